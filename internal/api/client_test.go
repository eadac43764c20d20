package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/session"
)

type fakeServer struct {
	*httptest.Server
	router *chi.Mux
	hits   atomic.Int64
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{router: chi.NewRouter()}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		fs.router.ServeHTTP(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func newTestClient(t *testing.T, fs *fakeServer, token string) *Client {
	t.Helper()
	c, err := New(fs.URL, session.NewMemory(token))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com", session.NewMemory(""))
	assert.Error(t, err)
}

func TestProtectedCall_WithoutTokenMakesNoRequest(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(t, fs, "")

	_, err := c.GetProfile(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.ListTransactions(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.ReportPDF(context.Background(), period.New(2024, 5))
	require.ErrorIs(t, err, ErrUnauthenticated)

	assert.Zero(t, fs.hits.Load())
}

func TestProtectedCall_AttachesBearer(t *testing.T) {
	fs := newFakeServer(t)
	var auth, agent string
	fs.router.Get("/api/profile/check-profile", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		agent = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, map[string]bool{"Profile": true})
	})
	c := newTestClient(t, fs, "tok-123")

	has, err := c.HasProfile(context.Background())
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "Bearer tok-123", auth)
	assert.Contains(t, agent, "budgetwise-cli/")
}

func TestUnauthorizedResponses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		fs := newFakeServer(t)
		fs.router.Get("/api/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		sess := session.NewMemory("stale")
		c, err := New(fs.URL, sess)
		require.NoError(t, err)

		_, err = c.DashboardSummary(context.Background())
		require.ErrorIs(t, err, ErrUnauthenticated, "status %d", status)
		assert.Equal(t, KindUnauthenticated, KindOf(err))

		// The client never clears the session itself.
		_, ok, _ := sess.Token(context.Background())
		assert.True(t, ok)
	}
}

func TestLogin(t *testing.T) {
	fs := newFakeServer(t)
	fs.router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "Invalid email or password")
			return
		}
		_, _ = io.WriteString(w, "jwt-token")
	})
	c := newTestClient(t, fs, "")

	token, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)

	_, err = c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "nope"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.General)
}

func TestLogin_QuotedToken(t *testing.T) {
	fs := newFakeServer(t)
	fs.router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "quoted-token")
	})
	c := newTestClient(t, fs, "")

	token, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "quoted-token", token)
}

func TestListTransactions_ArrayOrWrapped(t *testing.T) {
	body := []map[string]any{
		{"id": 1, "description": "Lunch", "amount": 12.5, "category": "Food & dining", "account": "expense", "date": "2024-05-02"},
	}
	tests := []struct {
		name    string
		payload any
	}{
		{"array", body},
		{"wrapped", map[string]any{"data": body}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(t)
			fs.router.Get("/api/transaction/list", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.payload)
			})
			c := newTestClient(t, fs, "tok")

			txns, err := c.ListTransactions(context.Background())
			require.NoError(t, err)
			require.Len(t, txns, 1)
			assert.Equal(t, int64(1), txns[0].ID)
			assert.True(t, txns[0].Amount.OrZero().Equal(decimal.RequireFromString("12.5")))
			assert.Equal(t, "2024-05-02", txns[0].Date.String())
		})
	}
}

func TestMonthlyAndBudgetQueries(t *testing.T) {
	fs := newFakeServer(t)
	var balanceQuery string
	var budgets map[string]float64
	fs.router.Get("/api/transaction/monthly", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.Equal(t, "5", r.URL.Query().Get("month"))
		writeJSON(w, http.StatusOK, map[string]any{
			"transactions":    []any{},
			"startingBalance": 10000,
			"budgetFood":      5000,
		})
	})
	fs.router.Post("/api/transaction/set-starting-balance", func(w http.ResponseWriter, r *http.Request) {
		balanceQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})
	fs.router.Post("/api/transaction/set-budgets", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&budgets))
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, fs, "tok")
	ctx := context.Background()
	p := period.New(2024, 5)

	data, err := c.Monthly(ctx, p)
	require.NoError(t, err)
	assert.True(t, data.StartingBalance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, data.BudgetFood.Equal(decimal.NewFromInt(5000)))

	require.NoError(t, c.SetStartingBalance(ctx, p, decimal.RequireFromString("2500.50")))
	assert.Equal(t, "balance=2500.5&month=5&year=2024", balanceQuery)

	require.NoError(t, c.SetBudgets(ctx, p, model.BudgetLimits{"budgetFood": decimal.NewFromInt(4000)}))
	assert.Equal(t, map[string]float64{"budgetFood": 4000}, budgets)
}

func TestAddTransaction_SendsNumericAmount(t *testing.T) {
	fs := newFakeServer(t)
	var got map[string]any
	fs.router.Post("/api/transaction/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, fs, "tok")

	amount, err := model.ParseAmount("12.50")
	require.NoError(t, err)
	err = c.AddTransaction(context.Background(), model.TransactionInput{
		Description: "Lunch",
		Amount:      amount,
		Category:    "Food & dining",
		Account:     model.AccountExpense,
		Date:        model.NewDate(2024, 5, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, got["amount"])
	assert.Equal(t, "2024-05-02", got["date"])
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	fs := newFakeServer(t)
	fs.router.Delete("/api/transaction/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Transaction not found"})
	})
	c := newTestClient(t, fs, "tok")

	err := c.DeleteTransaction(context.Background(), 42)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNotFound, apiErr.Kind())
	assert.Equal(t, "Transaction not found", apiErr.General)
}

func TestReportPDF_ReturnsRawBytes(t *testing.T) {
	fs := newFakeServer(t)
	fs.router.Get("/api/transaction/report/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})
	c := newTestClient(t, fs, "tok")

	data, err := c.ReportPDF(context.Background(), period.New(2024, 5))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestChat(t *testing.T) {
	fs := newFakeServer(t)
	var sent chatRequest
	fs.router.Post("/api/ai/chat", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		if sent.Prompt == "down" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI service is unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"advice": "Spend less on food."})
	})
	c := newTestClient(t, fs, "tok")

	advice, err := c.Chat(context.Background(), "help", ChatContext{SelectedMonth: "2024-05", BudgetFood: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, "Spend less on food.", advice)
	assert.Equal(t, "2024-05", sent.Context.SelectedMonth)
	assert.True(t, sent.Context.BudgetFood.Equal(decimal.NewFromInt(5000)))

	_, err = c.Chat(context.Background(), "down", ChatContext{})
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, "AI service is unavailable", Message(err))
}

func TestNetworkFailure(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(t, fs, "tok")
	fs.Close()

	_, err := c.SpendingTrends(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestSavingGoalEndpoints(t *testing.T) {
	fs := newFakeServer(t)
	var calls []string
	record := func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}
	fs.router.Get("/api/saving-goals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 3, "name": "Trip", "targetAmount": 1000, "currentAmount": 250}})
	})
	fs.router.Post("/api/saving-goals", record)
	fs.router.Put("/api/saving-goals/{id}", record)
	fs.router.Delete("/api/saving-goals/{id}", record)
	c := newTestClient(t, fs, "tok")
	ctx := context.Background()

	goals, err := c.ListSavingGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Trip", goals[0].Name)
	assert.True(t, goals[0].Progress().Equal(decimal.RequireFromString("0.25")))

	in := model.SavingGoalInput{Name: "Trip", TargetAmount: decimal.NewFromInt(1000)}
	require.NoError(t, c.AddSavingGoal(ctx, in))
	require.NoError(t, c.UpdateSavingGoal(ctx, 3, in))
	require.NoError(t, c.DeleteSavingGoal(ctx, 3))
	assert.Equal(t, []string{
		"POST /api/saving-goals",
		"PUT /api/saving-goals/3",
		"DELETE /api/saving-goals/3",
	}, calls)
}
