// Package router maps client paths to screens and builds the bottom
// navigation bar.
package router

import "strings"

// Screen identifies a view.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenRegister     Screen = "register"
	ScreenProfileForm  Screen = "profile-form"
	ScreenDashboard    Screen = "dashboard"
	ScreenTransactions Screen = "transactions"
	ScreenBudget       Screen = "budget"
	ScreenProfile      Screen = "profile"
	ScreenNotFound     Screen = "not-found"
)

const (
	PathRoot         = "/"
	PathLogin        = "/auth/login"
	PathRegister     = "/auth/register"
	PathProfileForm  = "/profileform"
	PathDashboard    = "/dashboard"
	PathTransactions = "/transactions"
	PathBudget       = "/budget"
	PathProfile      = "/profile"
)

// Route binds a path to a screen.
type Route struct {
	Path      string
	Screen    Screen
	Title     string
	Protected bool // requires a session token
}

// NavItem is one entry of the bottom navigation bar.
type NavItem struct {
	Label  string
	Path   string
	Active bool
	Action bool // performs an action instead of navigating
}

// Router is an immutable route table.
type Router struct {
	routes []Route
	byPath map[string]Route
	nav    []NavItem
}

// Default returns the application's route table.
func Default() *Router {
	return New([]Route{
		{Path: PathRoot, Screen: ScreenLogin, Title: "Login"},
		{Path: PathLogin, Screen: ScreenLogin, Title: "Login"},
		{Path: PathRegister, Screen: ScreenRegister, Title: "Register"},
		{Path: PathProfileForm, Screen: ScreenProfileForm, Title: "Complete your profile", Protected: true},
		{Path: PathDashboard, Screen: ScreenDashboard, Title: "Dashboard", Protected: true},
		{Path: PathTransactions, Screen: ScreenTransactions, Title: "Transactions", Protected: true},
		{Path: PathBudget, Screen: ScreenBudget, Title: "Budget", Protected: true},
		{Path: PathProfile, Screen: ScreenProfile, Title: "Profile", Protected: true},
	}, []NavItem{
		{Label: "Dashboard", Path: PathDashboard},
		{Label: "Transactions", Path: PathTransactions},
		{Label: "Budget", Path: PathBudget},
		{Label: "Profile", Path: PathProfile},
		{Label: "Sign Out", Action: true},
	})
}

// New builds a Router. Later routes win on duplicate paths.
func New(routes []Route, nav []NavItem) *Router {
	r := &Router{
		routes: routes,
		byPath: make(map[string]Route, len(routes)),
		nav:    nav,
	}
	for _, rt := range routes {
		r.byPath[rt.Path] = rt
	}
	return r
}

// Routes returns the table in declaration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Match returns the route for path. Unknown paths yield the not-found route
// and false.
func (r *Router) Match(path string) (Route, bool) {
	rt, ok := r.byPath[Clean(path)]
	if !ok {
		return Route{Path: Clean(path), Screen: ScreenNotFound, Title: "Page not found"}, false
	}
	return rt, true
}

// NavBar returns the navigation items with the one matching current marked
// active.
func (r *Router) NavBar(current string) []NavItem {
	current = Clean(current)
	items := make([]NavItem, len(r.nav))
	for i, item := range r.nav {
		item.Active = !item.Action && item.Path == current
		items[i] = item
	}
	return items
}

// Clean normalises a path: leading slash, no trailing slash, lower case.
func Clean(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
