package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/session"
)

type fakeBackend struct {
	calls      []string
	token      string
	loginErr   error
	hasProfile bool
	profileErr error
	signOutErr error
	addErr     error
}

func (f *fakeBackend) Login(_ context.Context, _ api.Credentials) (string, error) {
	f.calls = append(f.calls, "login")
	return f.token, f.loginErr
}

func (f *fakeBackend) Register(context.Context, api.Signup) error {
	f.calls = append(f.calls, "register")
	return nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.calls = append(f.calls, "signout")
	return f.signOutErr
}

func (f *fakeBackend) HasProfile(context.Context) (bool, error) {
	f.calls = append(f.calls, "check-profile")
	return f.hasProfile, f.profileErr
}

func (f *fakeBackend) AddProfile(context.Context, model.ProfileInput) error {
	f.calls = append(f.calls, "add-profile")
	return f.addErr
}

func newGate(b *fakeBackend, token string) (*Gate, *session.Memory) {
	sess := session.NewMemory(token)
	return NewGate(b, sess, router.Default(), zerolog.Nop()), sess
}

func TestEnter_ProtectedWithoutTokenMakesNoCalls(t *testing.T) {
	for _, path := range []string{router.PathDashboard, router.PathTransactions, router.PathBudget, router.PathProfile, router.PathProfileForm} {
		b := &fakeBackend{}
		g, _ := newGate(b, "")

		rt, err := g.Enter(context.Background(), path)
		require.ErrorIs(t, err, ErrLoginRequired, path)
		assert.Equal(t, router.ScreenLogin, rt.Screen, path)
		assert.Empty(t, b.calls, path)
	}
}

func TestEnter_PublicAndAuthenticated(t *testing.T) {
	g, _ := newGate(&fakeBackend{}, "")
	rt, err := g.Enter(context.Background(), router.PathRegister)
	require.NoError(t, err)
	assert.Equal(t, router.ScreenRegister, rt.Screen)

	g, _ = newGate(&fakeBackend{}, "tok")
	rt, err = g.Enter(context.Background(), router.PathBudget)
	require.NoError(t, err)
	assert.Equal(t, router.ScreenBudget, rt.Screen)
}

func TestLogin_Branches(t *testing.T) {
	tests := []struct {
		name       string
		hasProfile bool
		state      State
		next       string
	}{
		{"no profile", false, AuthenticatedNoProfile, router.PathProfileForm},
		{"with profile", true, AuthenticatedWithProfile, router.PathProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{token: "jwt", hasProfile: tt.hasProfile}
			g, sess := newGate(b, "")

			d, err := g.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, tt.state, d.State)
			assert.Equal(t, tt.next, d.Next)
			assert.Equal(t, []string{"login", "check-profile"}, b.calls)

			token, ok, err := sess.Token(context.Background())
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "jwt", token)
		})
	}
}

func TestLogin_FailedLoginKeepsUnauthenticated(t *testing.T) {
	b := &fakeBackend{loginErr: &api.Error{Status: http.StatusUnauthorized, General: "Invalid email or password"}}
	g, sess := newGate(b, "")

	d, err := g.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, d.State)
	assert.Equal(t, []string{"login"}, b.calls)
	_, ok, _ := sess.Token(context.Background())
	assert.False(t, ok)
}

func TestLogin_FailedProfileCheckDiscardsToken(t *testing.T) {
	b := &fakeBackend{token: "jwt", profileErr: errors.New("boom")}
	g, sess := newGate(b, "")

	d, err := g.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, d.State)
	_, ok, _ := sess.Token(context.Background())
	assert.False(t, ok)
}

func TestRegister_ThenLogin(t *testing.T) {
	b := &fakeBackend{token: "jwt"}
	g, _ := newGate(b, "")

	d, err := g.Register(context.Background(), api.Signup{Name: "A", Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, router.PathProfileForm, d.Next)
	assert.Equal(t, []string{"register", "login", "check-profile"}, b.calls)
}

func TestCompleteProfile(t *testing.T) {
	b := &fakeBackend{}
	g, _ := newGate(b, "jwt")

	d, err := g.CompleteProfile(context.Background(), model.ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, AuthenticatedWithProfile, d.State)
	assert.Equal(t, router.PathProfile, d.Next)

	b.addErr = &api.Error{Status: http.StatusConflict, General: "Profile already exists"}
	d, err = g.CompleteProfile(context.Background(), model.ProfileInput{})
	require.Error(t, err)
	assert.Equal(t, AuthenticatedNoProfile, d.State)
	assert.Equal(t, api.KindConflict, api.KindOf(err))
}

func TestEnter_ProfileFlow(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{token: "jwt"}
	g, sess := newGate(b, "")

	_, err := g.Login(ctx, api.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	b.calls = nil

	for _, path := range []string{router.PathDashboard, router.PathTransactions, router.PathBudget, router.PathProfile} {
		rt, err := g.Enter(ctx, path)
		assert.ErrorIs(t, err, ErrProfileRequired, path)
		assert.Equal(t, router.ScreenProfileForm, rt.Screen, path)
	}
	rt, err := g.Enter(ctx, router.PathProfileForm)
	require.NoError(t, err)
	assert.Equal(t, router.ScreenProfileForm, rt.Screen)
	assert.Empty(t, b.calls, "entering reads local state only")

	_, err = g.CompleteProfile(ctx, model.ProfileInput{})
	require.NoError(t, err)
	rt, err = g.Enter(ctx, router.PathDashboard)
	require.NoError(t, err)
	assert.Equal(t, router.ScreenDashboard, rt.Screen)

	require.NoError(t, sess.SetProfile(ctx, false))
	_, err = g.SignOut(ctx)
	require.NoError(t, err)
	_, known, err := sess.Profile(ctx)
	require.NoError(t, err)
	assert.False(t, known, "sign-out forgets the profile flag")
}

func TestSignOut_AlwaysClears(t *testing.T) {
	b := &fakeBackend{signOutErr: errors.New("server down")}
	g, sess := newGate(b, "jwt")

	d, err := g.SignOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, d.State)
	assert.Equal(t, router.PathLogin, d.Next)
	assert.Equal(t, []string{"signout"}, b.calls)
	_, ok, _ := sess.Token(context.Background())
	assert.False(t, ok)
}

func TestSignOut_WithoutTokenSkipsServer(t *testing.T) {
	b := &fakeBackend{}
	g, _ := newGate(b, "")

	_, err := g.SignOut(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.calls)
}

func TestHandleError(t *testing.T) {
	g, sess := newGate(&fakeBackend{}, "jwt")

	plain := errors.New("other")
	assert.Same(t, plain, g.HandleError(context.Background(), plain))
	_, ok, _ := sess.Token(context.Background())
	assert.True(t, ok)

	err := g.HandleError(context.Background(), &api.Error{Status: http.StatusUnauthorized})
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, ok, _ = sess.Token(context.Background())
	assert.False(t, ok)
}

func TestCurrent(t *testing.T) {
	b := &fakeBackend{}
	g, _ := newGate(b, "")
	d, err := g.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, d.State)
	assert.Empty(t, b.calls)

	b = &fakeBackend{profileErr: &api.Error{Status: http.StatusForbidden}}
	g, sess := newGate(b, "stale")
	d, err = g.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, d.State)
	_, ok, _ := sess.Token(context.Background())
	assert.False(t, ok)
}
