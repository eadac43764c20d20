package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/activity"
	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/chat"
	"github.com/budgetwise-dev/budgetwise/internal/config"
	"github.com/budgetwise-dev/budgetwise/internal/display"
	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/logging"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/prompt"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/screens"
	"github.com/budgetwise-dev/budgetwise/internal/session"
	"github.com/budgetwise-dev/budgetwise/internal/state"
	"github.com/budgetwise-dev/budgetwise/internal/summary"
)

// app holds everything a command needs. It is built once per invocation by
// open and released by close.
type app struct {
	configPath string
	yes        bool
	now        func() time.Time

	cfg      *config.Config
	log      zerolog.Logger
	store    *state.Store
	session  *session.Persistent
	client   *api.Client
	routes   *router.Router
	gate     *auth.Gate
	cats     *category.Catalogue
	money    *display.Money
	loader   *screens.Loader
	chat     *chat.Adapter
	activity *activity.Log

	out  io.Writer
	errw io.Writer
	term *prompt.Terminal
}

func (a *app) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.configPath = path

	a.out = cmd.OutOrStdout()
	a.errw = cmd.ErrOrStderr()
	a.term = prompt.NewTerminal(cmd.InOrStdin(), a.errw)

	a.log, err = logging.New(a.errw, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logging.Install(a.log)

	a.money, err = display.NewMoney(cfg.Display.Currency)
	if err != nil {
		return err
	}

	a.store, err = state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("opening state: %w", err)
	}
	a.session = session.NewPersistent(a.store)

	opts := []api.Option{api.WithLogger(a.log)}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	a.client, err = api.New(cfg.API.BaseURL, a.session, opts...)
	if err != nil {
		return err
	}

	a.routes = router.Default()
	a.cats = category.Default()
	a.gate = auth.NewGate(a.client, a.session, a.routes, a.log)
	a.loader = screens.NewLoader(a.gate, a.client, summary.New(a.cats), a.log)
	a.chat = chat.New(a.store, a.client, a.cats, a.log)
	a.activity = activity.New(cfg.Activity.Path)
	if a.now == nil {
		a.now = time.Now
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) renderer() *screens.Renderer {
	return screens.NewRenderer(a.out, a.money)
}

// confirmer asks on the terminal unless --yes was given.
func (a *app) confirmer() prompt.Confirmer {
	if a.yes {
		return prompt.Static(true)
	}
	return a.term
}

// period resolves a --month flag, defaulting to the current month.
func (a *app) period(month string) (period.Period, error) {
	if month == "" {
		return period.Current(a.now()), nil
	}
	return period.Parse(month)
}

// enter checks the session and profile flag for the screen a command acts on.
func (a *app) enter(ctx context.Context, path string) error {
	_, err := a.gate.Enter(ctx, path)
	return err
}

// policy is the form error policy shared by every mutating command.
func (a *app) policy() forms.Option {
	return forms.WithErrorPolicy(a.gate.HandleError)
}

// record appends to the activity log. Failures to write are logged, not
// returned, so they never mask the command's own result.
func (a *app) record(ctx context.Context, action, target string, err error) {
	if rerr := a.activity.Record(a.user(ctx), action, target, err); rerr != nil {
		a.log.Warn().Err(rerr).Msg("writing activity log")
	}
}

// user names the session holder for the activity log.
func (a *app) user(ctx context.Context) string {
	token, ok, err := a.session.Token(ctx)
	if err != nil || !ok {
		return "-"
	}
	claims, err := session.Inspect(token)
	if err != nil || claims.Subject == "" {
		return "session"
	}
	return claims.Subject
}

// fill copies the given values into a form. Empty values are left alone.
func fill(c *forms.Controller, values map[string]string) error {
	for name, value := range values {
		if value == "" {
			continue
		}
		if err := c.FieldChange(name, value); err != nil {
			return err
		}
	}
	return nil
}

// formFailure prints the form's field messages and returns err.
func (a *app) formFailure(c *forms.Controller, err error) error {
	fields := c.FieldErrors()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.errw, "  %s: %s\n", name, fields[name])
	}
	if errors.Is(err, forms.ErrInvalid) && c.General() == "" && len(fields) > 0 {
		return errors.New("please correct the fields above")
	}
	return err
}
