// Package auth decides which screen a user may see based on the session token
// and whether a profile exists.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/session"
)

// ErrLoginRequired is returned when a protected screen is entered without a
// usable session.
var ErrLoginRequired = errors.New("login required")

// ErrProfileRequired is returned when a protected screen other than the
// profile form is entered by a user known to have no profile.
var ErrProfileRequired = errors.New("profile required")

// State is the gate's view of the user.
type State int

const (
	Unauthenticated State = iota
	AuthenticatedNoProfile
	AuthenticatedWithProfile
)

func (s State) String() string {
	switch s {
	case AuthenticatedNoProfile:
		return "authenticated (no profile)"
	case AuthenticatedWithProfile:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Decision is the outcome of a gate transition: the new state and where to
// navigate next.
type Decision struct {
	State State
	Next  string
}

// Backend is the part of the API the gate calls.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, in api.Signup) error
	SignOut(ctx context.Context) error
	HasProfile(ctx context.Context) (bool, error)
	AddProfile(ctx context.Context, in model.ProfileInput) error
}

// Gate guards protected screens.
type Gate struct {
	backend Backend
	session session.Store
	routes  *router.Router
	log     zerolog.Logger
}

func NewGate(backend Backend, sess session.Store, routes *router.Router, log zerolog.Logger) *Gate {
	return &Gate{backend: backend, session: sess, routes: routes, log: log}
}

// Require fails with ErrLoginRequired when no token is held. It never touches
// the network.
func (g *Gate) Require(ctx context.Context) error {
	_, ok, err := g.session.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLoginRequired
	}
	return nil
}

// Enter resolves path to a route and checks the session for protected ones.
// On ErrLoginRequired the returned route is the login route; on
// ErrProfileRequired it is the profile form. Both checks read local state only.
func (g *Gate) Enter(ctx context.Context, path string) (router.Route, error) {
	rt, _ := g.routes.Match(path)
	if !rt.Protected {
		return rt, nil
	}
	if err := g.Require(ctx); err != nil {
		login, _ := g.routes.Match(router.PathLogin)
		return login, err
	}
	if rt.Path == router.PathProfileForm {
		return rt, nil
	}
	has, known, err := g.session.Profile(ctx)
	if err != nil {
		return rt, err
	}
	if known && !has {
		form, _ := g.routes.Match(router.PathProfileForm)
		return form, ErrProfileRequired
	}
	return rt, nil
}

func (g *Gate) recordProfile(ctx context.Context, has bool) {
	if err := g.session.SetProfile(ctx, has); err != nil {
		g.log.Warn().Err(err).Msg("saving profile flag")
	}
}

// Login exchanges credentials for a token, stores it, then branches on the
// profile check. If the check fails the token is discarded and the state
// stays Unauthenticated.
func (g *Gate) Login(ctx context.Context, creds api.Credentials) (Decision, error) {
	token, err := g.backend.Login(ctx, creds)
	if err != nil {
		return Decision{State: Unauthenticated, Next: router.PathLogin}, err
	}
	if err := g.session.SetToken(ctx, token); err != nil {
		return Decision{State: Unauthenticated, Next: router.PathLogin}, err
	}

	has, err := g.backend.HasProfile(ctx)
	if err != nil {
		if clearErr := g.session.ClearToken(ctx); clearErr != nil {
			g.log.Warn().Err(clearErr).Msg("discarding token after failed profile check")
		}
		return Decision{State: Unauthenticated, Next: router.PathLogin}, fmt.Errorf("checking profile: %w", err)
	}

	g.recordProfile(ctx, has)
	g.log.Info().Str("email", creds.Email).Bool("profile", has).Msg("logged in")
	if !has {
		return Decision{State: AuthenticatedNoProfile, Next: router.PathProfileForm}, nil
	}
	return Decision{State: AuthenticatedWithProfile, Next: router.PathProfile}, nil
}

// Register creates the account and then logs in with the same credentials.
func (g *Gate) Register(ctx context.Context, in api.Signup) (Decision, error) {
	if err := g.backend.Register(ctx, in); err != nil {
		return Decision{State: Unauthenticated, Next: router.PathRegister}, err
	}
	return g.Login(ctx, api.Credentials{Email: in.Email, Password: in.Password})
}

// CompleteProfile submits the one-time profile form.
func (g *Gate) CompleteProfile(ctx context.Context, in model.ProfileInput) (Decision, error) {
	if err := g.Require(ctx); err != nil {
		return Decision{State: Unauthenticated, Next: router.PathLogin}, err
	}
	if err := g.backend.AddProfile(ctx, in); err != nil {
		return Decision{State: AuthenticatedNoProfile, Next: router.PathProfileForm}, g.HandleError(ctx, err)
	}
	g.recordProfile(ctx, true)
	return Decision{State: AuthenticatedWithProfile, Next: router.PathProfile}, nil
}

// Current reports the state by asking the server about the profile. Without a
// token it makes no call.
func (g *Gate) Current(ctx context.Context) (Decision, error) {
	if err := g.Require(ctx); err != nil {
		return Decision{State: Unauthenticated, Next: router.PathLogin}, nil
	}
	has, err := g.backend.HasProfile(ctx)
	if err != nil {
		if err := g.HandleError(ctx, err); errors.Is(err, ErrLoginRequired) {
			return Decision{State: Unauthenticated, Next: router.PathLogin}, nil
		}
		return Decision{}, fmt.Errorf("checking profile: %w", err)
	}
	g.recordProfile(ctx, has)
	if !has {
		return Decision{State: AuthenticatedNoProfile, Next: router.PathProfileForm}, nil
	}
	return Decision{State: AuthenticatedWithProfile, Next: router.PathProfile}, nil
}

// SignOut notifies the server if a token is held, then clears the session and
// the profile flag whatever the outcome.
func (g *Gate) SignOut(ctx context.Context) (Decision, error) {
	if _, ok, _ := g.session.Token(ctx); ok {
		if err := g.backend.SignOut(ctx); err != nil {
			g.log.Debug().Err(err).Msg("server sign-out failed")
		}
	}
	if err := g.session.ClearToken(ctx); err != nil {
		return Decision{State: Unauthenticated, Next: router.PathLogin}, err
	}
	return Decision{State: Unauthenticated, Next: router.PathLogin}, nil
}

// HandleError applies the authorization-failure policy: a rejected token
// clears the session and becomes ErrLoginRequired. Other errors pass through.
func (g *Gate) HandleError(ctx context.Context, err error) error {
	if err == nil || api.KindOf(err) != api.KindUnauthenticated {
		return err
	}
	if clearErr := g.session.ClearToken(ctx); clearErr != nil {
		g.log.Warn().Err(clearErr).Msg("clearing rejected session")
	}
	return fmt.Errorf("%w: %v", ErrLoginRequired, err)
}
