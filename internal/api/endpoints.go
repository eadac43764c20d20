package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
)

// Credentials is the login body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup is the signup body.
type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. It does not store the token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	data, err := c.send(ctx, request{method: http.MethodPost, path: "/api/auth/login", body: creds, public: true})
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if strings.HasPrefix(token, `"`) {
		if err := json.Unmarshal([]byte(token), &token); err != nil {
			return "", fmt.Errorf("decoding login token: %w", err)
		}
	}
	if token == "" {
		return "", fmt.Errorf("login returned an empty token")
	}
	return token, nil
}

// Register creates an account. The response body is ignored.
func (c *Client) Register(ctx context.Context, in Signup) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/auth/signup", body: in, public: true}, nil)
}

// SignOut asks the server to revoke the current token.
func (c *Client) SignOut(ctx context.Context) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/auth/signout"}, nil)
}

// HasProfile reports whether the signed-in user has completed a profile.
func (c *Client) HasProfile(ctx context.Context) (bool, error) {
	var out model.ProfileCheck
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/profile/check-profile"}, &out); err != nil {
		return false, err
	}
	return out.Profile, nil
}

func (c *Client) GetProfile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/profile/get-profile"}, &out)
	return out, err
}

func (c *Client) AddProfile(ctx context.Context, in model.ProfileInput) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/profile/add-profile", body: in}, nil)
}

// ListTransactions returns every transaction of the user. The server may
// answer with a bare array or with {"data": [...]}.
func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	data, err := c.send(ctx, request{method: http.MethodGet, path: "/api/transaction/list"})
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	if data[0] == '{' {
		var wrapped struct {
			Data []model.Transaction `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding transaction list: %w", err)
		}
		return wrapped.Data, nil
	}
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("decoding transaction list: %w", err)
	}
	return txns, nil
}

// Monthly returns the month's transactions with its budget set and totals.
func (c *Client) Monthly(ctx context.Context, p period.Period) (model.MonthlyData, error) {
	var out model.MonthlyData
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/transaction/monthly", query: periodQuery(p)}, &out)
	return out, err
}

func (c *Client) AddTransaction(ctx context.Context, in model.TransactionInput) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/transaction/add", body: in}, nil)
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in model.TransactionInput) error {
	return c.call(ctx, request{method: http.MethodPut, path: "/api/transaction/update/" + strconv.FormatInt(id, 10), body: in}, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.call(ctx, request{method: http.MethodDelete, path: "/api/transaction/delete/" + strconv.FormatInt(id, 10)}, nil)
}

// SetStartingBalance upserts the period's starting balance.
func (c *Client) SetStartingBalance(ctx context.Context, p period.Period, balance decimal.Decimal) error {
	q := periodQuery(p)
	q.Set("balance", balance.String())
	return c.call(ctx, request{method: http.MethodPost, path: "/api/transaction/set-starting-balance", query: q}, nil)
}

// SetBudgets upserts the period's per-category limits, keyed by budget key.
func (c *Client) SetBudgets(ctx context.Context, p period.Period, limits model.BudgetLimits) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/transaction/set-budgets", query: periodQuery(p), body: limits}, nil)
}

func (c *Client) SpendingTrends(ctx context.Context) ([]model.SpendingTrend, error) {
	var out []model.SpendingTrend
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/transaction/spending-trends"}, &out)
	return out, err
}

// ReportPDF downloads the period's PDF report. It is a single attempt.
func (c *Client) ReportPDF(ctx context.Context, p period.Period) ([]byte, error) {
	return c.send(ctx, request{method: http.MethodGet, path: "/api/transaction/report/pdf", query: periodQuery(p)})
}

func (c *Client) ListSavingGoals(ctx context.Context) ([]model.SavingGoal, error) {
	var out []model.SavingGoal
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/saving-goals"}, &out)
	return out, err
}

func (c *Client) AddSavingGoal(ctx context.Context, in model.SavingGoalInput) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/saving-goals", body: in}, nil)
}

func (c *Client) UpdateSavingGoal(ctx context.Context, id int64, in model.SavingGoalInput) error {
	return c.call(ctx, request{method: http.MethodPut, path: "/api/saving-goals/" + strconv.FormatInt(id, 10), body: in}, nil)
}

func (c *Client) DeleteSavingGoal(ctx context.Context, id int64) error {
	return c.call(ctx, request{method: http.MethodDelete, path: "/api/saving-goals/" + strconv.FormatInt(id, 10)}, nil)
}

func (c *Client) DashboardSummary(ctx context.Context) (model.DashboardSummary, error) {
	var out model.DashboardSummary
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/dashboard/summary"}, &out)
	return out, err
}

// ChatContext is the monthly snapshot sent with every chat prompt.
type ChatContext struct {
	SelectedMonth                string          `json:"selectedMonth"`
	StartingBalance              decimal.Decimal `json:"startingBalance"`
	TotalCredits                 decimal.Decimal `json:"totalCredits"`
	TotalExpenses                decimal.Decimal `json:"totalExpenses"`
	RemainingBalance             decimal.Decimal `json:"remainingBalance"`
	BudgetFood                   decimal.Decimal `json:"budgetFood"`
	BudgetTransportation         decimal.Decimal `json:"budgetTransportation"`
	BudgetEntertainment          decimal.Decimal `json:"budgetEntertainment"`
	BudgetShopping               decimal.Decimal `json:"budgetShopping"`
	BudgetUtilities              decimal.Decimal `json:"budgetUtilities"`
	ActualSpendingFood           decimal.Decimal `json:"actualSpendingFood"`
	ActualSpendingTransportation decimal.Decimal `json:"actualSpendingTransportation"`
	ActualSpendingEntertainment  decimal.Decimal `json:"actualSpendingEntertainment"`
	ActualSpendingShopping       decimal.Decimal `json:"actualSpendingShopping"`
	ActualSpendingUtilities      decimal.Decimal `json:"actualSpendingUtilities"`
}

type chatRequest struct {
	Prompt  string      `json:"prompt"`
	Context ChatContext `json:"context"`
}

type chatReply struct {
	Advice string `json:"advice"`
}

// Chat sends a prompt with the month's context and returns the advice text.
func (c *Client) Chat(ctx context.Context, prompt string, snapshot ChatContext) (string, error) {
	var out chatReply
	if err := c.call(ctx, request{method: http.MethodPost, path: "/api/ai/chat", body: chatRequest{Prompt: prompt, Context: snapshot}}, &out); err != nil {
		return "", err
	}
	return out.Advice, nil
}

func periodQuery(p period.Period) url.Values {
	return url.Values{
		"year":  []string{p.YearString()},
		"month": []string{p.MonthString()},
	}
}
