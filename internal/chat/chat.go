// Package chat keeps the AI assistant conversation and talks to the advice
// endpoint.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/prompt"
	"github.com/budgetwise-dev/budgetwise/internal/state"
	"github.com/budgetwise-dev/budgetwise/internal/summary"
)

const (
	// HistoryKey is the state key of the message log.
	HistoryKey = "aiChatHistory"
	// UnlockedKey marks the assistant as activated.
	UnlockedKey = "aiChatUnlocked"

	Welcome      = "Hi! I'm your BudgetWise assistant. Ask me about your spending, or ask for a budget plan for this month."
	noAdvice     = "Sorry, I couldn't get a clear response from the advisor."
	unavailable  = "AI Service Unavailable. Check the Ollama server connection."
	clearConfirm = "Are you sure you want to clear the entire chat history?"
)

var (
	ErrBusy   = errors.New("a chat request is already in progress")
	ErrLocked = errors.New("the assistant is locked; run 'budgetwise chat unlock' first")
	ErrEmpty  = errors.New("message is empty")
)

// Sender is who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of the log.
type Message struct {
	Sender     Sender             `json:"sender"`
	Text       string             `json:"text"`
	IsError    bool               `json:"isError,omitempty"`
	Suggestion model.BudgetLimits `json:"suggestion,omitempty"`
	Period     string             `json:"period,omitempty"` // month the suggestion applies to
	Applied    bool               `json:"applied,omitempty"`
	Notes      []string           `json:"notes,omitempty"` // follow-ups from apply
}

// Backend is the part of the API the chat calls.
type Backend interface {
	Chat(ctx context.Context, prompt string, snapshot api.ChatContext) (string, error)
	SetBudgets(ctx context.Context, p period.Period, limits model.BudgetLimits) error
}

// Adapter owns the message log. At most one request is outstanding at a time.
// The busy guard is per process: separate invocations sharing a state file
// each read and rewrite the stored log, and the last write wins.
type Adapter struct {
	kv      state.KV
	backend Backend
	cats    *category.Catalogue
	log     zerolog.Logger

	mu   sync.Mutex
	busy bool
}

func New(kv state.KV, backend Backend, cats *category.Catalogue, log zerolog.Logger) *Adapter {
	return &Adapter{kv: kv, backend: backend, cats: cats, log: log}
}

// History returns the log, seeding and saving the welcome message when empty.
func (a *Adapter) History(ctx context.Context) ([]Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// Busy reports whether a request is outstanding.
func (a *Adapter) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Locked reports whether sending is disabled until Unlock.
func (a *Adapter) Locked(ctx context.Context) (bool, error) {
	v, ok, err := a.kv.Get(ctx, UnlockedKey)
	if err != nil {
		return true, fmt.Errorf("reading chat lock: %w", err)
	}
	return !ok || v != "true", nil
}

// Unlock activates the assistant.
func (a *Adapter) Unlock(ctx context.Context) error {
	if err := a.kv.Set(ctx, UnlockedKey, "true"); err != nil {
		return fmt.Errorf("unlocking chat: %w", err)
	}
	return nil
}

// Send appends the user's message, asks for advice with the month's figures
// and appends exactly one reply. The user message stays even if the request
// fails. The returned error is the request failure, if any; the reply then
// carries the error notice.
func (a *Adapter) Send(ctx context.Context, text string, month summary.MonthlySummary) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmpty
	}
	locked, err := a.Locked(ctx)
	if err != nil {
		return Message{}, err
	}
	if locked {
		return Message{}, ErrLocked
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return Message{}, ErrBusy
	}
	a.busy = true
	err = a.appendLocked(ctx, Message{Sender: SenderUser, Text: text})
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()
	if err != nil {
		return Message{}, err
	}

	advice, callErr := a.backend.Chat(ctx, text, Snapshot(month))
	reply := a.reply(advice, callErr, month.Period)

	a.mu.Lock()
	err = a.appendLocked(ctx, reply)
	a.mu.Unlock()
	if err != nil {
		return reply, err
	}
	if callErr != nil {
		a.log.Warn().Err(callErr).Msg("chat request failed")
	}
	return reply, callErr
}

func (a *Adapter) reply(advice string, err error, p period.Period) Message {
	if err != nil {
		text := unavailable
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.General != "" {
			text = apiErr.General
		}
		return Message{Sender: SenderAI, Text: text, IsError: true}
	}
	if strings.TrimSpace(advice) == "" {
		return Message{Sender: SenderAI, Text: noAdvice}
	}
	msg := Message{Sender: SenderAI, Text: advice}
	if limits, ok := ParseSuggestion(advice, a.cats); ok {
		msg.Suggestion = limits
		msg.Period = p.String()
	}
	return msg
}

// Apply submits the budget suggestion of message index through the budget
// call and records the outcome as a note on that same message.
func (a *Adapter) Apply(ctx context.Context, index int) (Message, error) {
	a.mu.Lock()
	msgs, err := a.load(ctx)
	a.mu.Unlock()
	if err != nil {
		return Message{}, err
	}
	if index < 0 || index >= len(msgs) {
		return Message{}, fmt.Errorf("no message #%d", index)
	}
	msg := msgs[index]
	if msg.Sender != SenderAI || len(msg.Suggestion) == 0 {
		return Message{}, fmt.Errorf("message #%d has no budget suggestion", index)
	}
	if msg.Applied {
		return msg, fmt.Errorf("suggestion #%d was already applied", index)
	}
	p, err := period.Parse(msg.Period)
	if err != nil {
		return Message{}, fmt.Errorf("suggestion #%d: %w", index, err)
	}

	callErr := a.backend.SetBudgets(ctx, p, msg.Suggestion)

	a.mu.Lock()
	defer a.mu.Unlock()
	msgs, err = a.load(ctx)
	if err != nil {
		return Message{}, err
	}
	if index >= len(msgs) {
		return Message{}, fmt.Errorf("chat history changed while applying #%d", index)
	}
	msg = msgs[index]
	if callErr != nil {
		msg.Notes = append(msg.Notes, "Could not apply budget: "+api.Message(callErr))
	} else {
		msg.Applied = true
		msg.Notes = append(msg.Notes, "Budget for "+p.String()+" updated.")
	}
	msgs[index] = msg
	if err := a.save(ctx, msgs); err != nil {
		return msg, err
	}
	return msg, callErr
}

// Clear wipes the log after confirmation. It reports whether it cleared.
func (a *Adapter) Clear(ctx context.Context, confirm prompt.Confirmer) (bool, error) {
	ok, err := confirm.Confirm(ctx, clearConfirm)
	if err != nil || !ok {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.kv.Delete(ctx, HistoryKey); err != nil {
		return false, fmt.Errorf("clearing chat history: %w", err)
	}
	return true, nil
}

// load reads the log; callers hold mu.
func (a *Adapter) load(ctx context.Context) ([]Message, error) {
	raw, ok, err := a.kv.Get(ctx, HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}
	var msgs []Message
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
			a.log.Warn().Err(err).Msg("discarding unreadable chat history")
			msgs = nil
		}
	}
	if len(msgs) == 0 {
		msgs = []Message{{Sender: SenderAI, Text: Welcome}}
		if err := a.save(ctx, msgs); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

func (a *Adapter) appendLocked(ctx context.Context, msg Message) error {
	msgs, err := a.load(ctx)
	if err != nil {
		return err
	}
	return a.save(ctx, append(msgs, msg))
}

func (a *Adapter) save(ctx context.Context, msgs []Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding chat history: %w", err)
	}
	if err := a.kv.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("saving chat history: %w", err)
	}
	return nil
}

// Snapshot builds the chat context from a month's summary.
func Snapshot(s summary.MonthlySummary) api.ChatContext {
	c := api.ChatContext{
		SelectedMonth:    s.Period.String(),
		StartingBalance:  s.StartingBalance,
		TotalCredits:     s.TotalCredits,
		TotalExpenses:    s.TotalExpenses,
		RemainingBalance: s.RemainingBalance,
	}
	for _, st := range s.Categories {
		switch st.Category.BudgetKey {
		case "budgetFood":
			c.BudgetFood, c.ActualSpendingFood = st.Budget, st.Spent
		case "budgetTransportation":
			c.BudgetTransportation, c.ActualSpendingTransportation = st.Budget, st.Spent
		case "budgetEntertainment":
			c.BudgetEntertainment, c.ActualSpendingEntertainment = st.Budget, st.Spent
		case "budgetShopping":
			c.BudgetShopping, c.ActualSpendingShopping = st.Budget, st.Spent
		case "budgetUtilities":
			c.BudgetUtilities, c.ActualSpendingUtilities = st.Budget, st.Spent
		}
	}
	return c
}
