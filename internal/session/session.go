// Package session holds the single bearer token that authenticates every
// protected call. Presence of the token is the only authentication signal;
// expiry is never checked locally.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/budgetwise-dev/budgetwise/internal/state"
)

const (
	// TokenKey is the state key the token is persisted under.
	TokenKey = "token"
	// ProfileKey records the last check-profile answer for the held token.
	ProfileKey = "hasProfile"
)

// Store holds at most one token and whether its user has a profile.
type Store interface {
	// Token returns the current token, or ok=false when none is held.
	Token(ctx context.Context) (token string, ok bool, err error)
	SetToken(ctx context.Context, token string) error
	// ClearToken forgets the token and the profile flag.
	ClearToken(ctx context.Context) error

	// Profile returns the recorded profile flag; known is false when nothing
	// has been recorded since the token was stored.
	Profile(ctx context.Context) (has, known bool, err error)
	SetProfile(ctx context.Context, has bool) error
}

// Persistent stores the token in a state.KV so it survives restarts.
type Persistent struct {
	kv state.KV
}

// NewPersistent creates a Persistent store on kv.
func NewPersistent(kv state.KV) *Persistent {
	return &Persistent{kv: kv}
}

func (p *Persistent) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := p.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("reading session: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (p *Persistent) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if err := p.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (p *Persistent) ClearToken(ctx context.Context) error {
	if err := p.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if err := p.kv.Delete(ctx, ProfileKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (p *Persistent) Profile(ctx context.Context) (bool, bool, error) {
	v, ok, err := p.kv.Get(ctx, ProfileKey)
	if err != nil {
		return false, false, fmt.Errorf("reading profile flag: %w", err)
	}
	if !ok {
		return false, false, nil
	}
	has, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, nil
	}
	return has, true, nil
}

func (p *Persistent) SetProfile(ctx context.Context, has bool) error {
	if err := p.kv.Set(ctx, ProfileKey, strconv.FormatBool(has)); err != nil {
		return fmt.Errorf("saving profile flag: %w", err)
	}
	return nil
}

// Memory keeps the token in process memory only.
type Memory struct {
	mu      sync.Mutex
	token   string
	profile *bool
}

// NewMemory returns a Memory store, optionally pre-seeded with a token.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *Memory) SetToken(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.profile = nil
	return nil
}

func (m *Memory) Profile(context.Context) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return false, false, nil
	}
	return *m.profile, true, nil
}

func (m *Memory) SetProfile(_ context.Context, has bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = &has
	return nil
}
