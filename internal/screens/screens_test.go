package screens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/display"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/prompt"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/session"
	"github.com/budgetwise-dev/budgetwise/internal/summary"
)

// backend is an in-memory BudgetWise server.
type backend struct {
	mu     sync.Mutex
	hits   atomic.Int64
	txns   []map[string]any
	nextID int
	goals  []map[string]any
}

func newBackend() *backend {
	return &backend{
		nextID: 3,
		txns: []map[string]any{
			{"id": 1, "description": "Salary", "amount": 20000, "category": "Salary", "account": "income", "date": "2024-05-01"},
			{"id": 2, "description": "Groceries", "amount": 6200, "category": "Food & dining", "account": "expense", "date": "2024-05-03"},
		},
		goals: []map[string]any{{"id": 9, "name": "Trip", "targetAmount": 1000, "currentAmount": 500}},
	}
}

func (b *backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.hits.Add(1)
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/profile/get-profile", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"user": map[string]string{"name": "Asha", "email": "asha@example.com"}, "income": 10000})
	})
	r.Get("/api/transaction/list", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"data": b.txns})
	})
	r.Post("/api/transaction/add", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		b.mu.Lock()
		body["id"] = b.nextID
		b.nextID++
		b.txns = append(b.txns, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	r.Delete("/api/transaction/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(req, "id"))
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, t := range b.txns {
			if t["id"] == id {
				b.txns = append(b.txns[:i], b.txns[i+1:]...)
				reply(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"error": "Transaction not found"})
	})
	r.Get("/api/transaction/monthly", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"transactions":    b.txns,
			"startingBalance": 10000,
			"budgetFood":      5000,
			"budgetShopping":  1000,
		})
	})
	r.Get("/api/dashboard/summary", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"totalIncome": 20000, "totalExpenses": 6200, "savings": 13800, "budgetsCount": 2})
	})
	r.Get("/api/transaction/spending-trends", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []map[string]any{{"year": 2024, "month": 5, "totalExpense": 6200}, {"year": 2024, "month": 4, "totalExpense": 3000}})
	})
	r.Get("/api/saving-goals", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, b.goals)
	})
	r.Get("/api/transaction/report/pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF"))
	})
	return r
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fixture struct {
	backend *backend
	client  *api.Client
	session *session.Memory
	loader  *Loader
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)

	sess := session.NewMemory(token)
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)
	gate := auth.NewGate(client, sess, router.Default(), zerolog.Nop())
	return &fixture{
		backend: b,
		client:  client,
		session: sess,
		loader:  NewLoader(gate, client, summary.New(category.Default()), zerolog.Nop()),
	}
}

var may = period.New(2024, 5)

func TestLoaders_NoTokenMakesNoCalls(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.loader.Dashboard(ctx)
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
	_, err = f.loader.Transactions(ctx, may)
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
	_, err = f.loader.Budget(ctx, may)
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
	_, err = f.loader.Profile(ctx)
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
	_, err = f.loader.Report(ctx, may)
	assert.ErrorIs(t, err, auth.ErrLoginRequired)

	assert.Zero(t, f.backend.hits.Load())
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, "tok")
	v, err := f.loader.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Summary.BudgetsCount)
	assert.Len(t, v.Trends, 2)
	assert.Equal(t, int64(2), f.backend.hits.Load())
}

func TestTransactions_SummarisesMonth(t *testing.T) {
	f := newFixture(t, "tok")
	v, err := f.loader.Transactions(context.Background(), may)
	require.NoError(t, err)

	assert.True(t, v.Month.StartingBalance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, v.Month.TotalCredits.Equal(decimal.NewFromInt(20000)))
	assert.True(t, v.Month.TotalExpenses.Equal(decimal.NewFromInt(6200)))
	assert.True(t, v.Month.RemainingBalance.Equal(decimal.NewFromInt(23800)))
	require.Len(t, v.Month.Days, 2)
	assert.Equal(t, "2024-05-03", v.Month.Days[0].Date.String())
	assert.Empty(t, v.Month.Categories, "no budget lines without a budget set")
	_, ok := v.Month.Category("budgetFood")
	assert.False(t, ok)
}

func TestBudget_FoodOverBudget(t *testing.T) {
	f := newFixture(t, "tok")
	v, err := f.loader.Budget(context.Background(), may)
	require.NoError(t, err)

	food, ok := v.Month.Category("budgetFood")
	require.True(t, ok)
	assert.True(t, food.Remaining.Equal(decimal.NewFromInt(-1200)))
	assert.True(t, food.Overbudget)

	var out bytes.Buffer
	money, err := display.NewMoney("INR")
	require.NoError(t, err)
	require.NoError(t, NewRenderer(&out, money).Budget(v))
	assert.Contains(t, out.String(), "over budget")
	assert.Contains(t, out.String(), "Food & dining")
}

func TestCreateThenRefetchIncludesOnce(t *testing.T) {
	f := newFixture(t, "tok")
	ctx := context.Background()

	amount, err := model.ParseAmount("12.50")
	require.NoError(t, err)
	require.NoError(t, f.client.AddTransaction(ctx, model.TransactionInput{
		Description: "Coffee", Amount: amount, Category: "Food & dining",
		Account: model.AccountExpense, Date: model.NewDate(2024, 5, 10),
	}))

	v, err := f.loader.Transactions(ctx, may)
	require.NoError(t, err)
	var found []model.Transaction
	for _, txn := range v.Month.Transactions {
		if txn.Description == "Coffee" {
			found = append(found, txn)
		}
	}
	require.Len(t, found, 1)
	assert.True(t, found[0].Amount.OrZero().Equal(decimal.RequireFromString("12.5")))
}

func TestDeleteTransactionTwice(t *testing.T) {
	f := newFixture(t, "tok")
	ctx := context.Background()
	v, err := f.loader.Transactions(ctx, may)
	require.NoError(t, err)
	require.Len(t, v.Month.Transactions, 2)

	deleted, err := f.loader.DeleteTransaction(ctx, v, 2, prompt.Static(true))
	require.NoError(t, err)
	assert.True(t, deleted)
	require.Len(t, v.Month.Transactions, 1)

	deleted, err = f.loader.DeleteTransaction(ctx, v, 2, prompt.Static(true))
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, api.KindNotFound, api.KindOf(err))
	assert.Len(t, v.Month.Transactions, 1)
}

func TestDeleteTransaction_Declined(t *testing.T) {
	f := newFixture(t, "tok")
	ctx := context.Background()
	v, err := f.loader.Transactions(ctx, may)
	require.NoError(t, err)
	before := f.backend.hits.Load()

	deleted, err := f.loader.DeleteTransaction(ctx, v, 2, prompt.Static(false))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, before, f.backend.hits.Load())
}

func TestProfileAndReport(t *testing.T) {
	f := newFixture(t, "tok")
	ctx := context.Background()

	v, err := f.loader.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha", v.Profile.User.Name)
	require.Len(t, v.Goals, 1)

	data, err := f.loader.Report(ctx, may)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "BudgetWise_Report_2024-05.pdf", ReportFilename(may))
}

func TestRejectedTokenClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	sess := session.NewMemory("expired")
	client, err := api.New(srv.URL, sess)
	require.NoError(t, err)
	gate := auth.NewGate(client, sess, router.Default(), zerolog.Nop())
	loader := NewLoader(gate, client, summary.New(category.Default()), zerolog.Nop())

	_, err = loader.Dashboard(context.Background())
	require.ErrorIs(t, err, auth.ErrLoginRequired)
	_, ok, _ := sess.Token(context.Background())
	assert.False(t, ok)
}

func TestRenderTransactionsAndNav(t *testing.T) {
	f := newFixture(t, "tok")
	v, err := f.loader.Transactions(context.Background(), may)
	require.NoError(t, err)

	var out bytes.Buffer
	money, err := display.NewMoney("INR")
	require.NoError(t, err)
	r := NewRenderer(&out, money)
	require.NoError(t, r.Transactions(v))
	assert.Contains(t, out.String(), "Groceries")
	assert.Contains(t, out.String(), "6200.00")

	out.Reset()
	require.NoError(t, r.Nav(router.Default(), "/budget"))
	assert.Contains(t, out.String(), "* Budget")
}
