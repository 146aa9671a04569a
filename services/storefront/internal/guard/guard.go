package guard

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"onlinemall/pkg/domain"
)

// ErrRoleUnavailable is returned by a policy that has no role data to decide on.
var ErrRoleUnavailable = errors.New("role information unavailable")

// Denial reasons reported in Decision.Reason.
const (
	ReasonLoginRequired   = "login_required"
	ReasonForbidden       = "forbidden"
	ReasonRoleUnavailable = "role_unavailable"
)

// SessionView is the read-only session the guard consults.
type SessionView interface {
	IsLoggedIn() bool
	UserInfo() (domain.UserInfo, bool)
}

// AdminPolicy decides whether a logged-in session may enter admin routes.
type AdminPolicy func(SessionView) (bool, error)

// RequireRole admits sessions whose server-supplied role equals role,
// ignoring case. Sessions without user info yield ErrRoleUnavailable.
func RequireRole(role string) AdminPolicy {
	role = strings.TrimSpace(role)
	if role == "" {
		role = domain.RoleAdmin
	}
	return func(s SessionView) (bool, error) {
		user, ok := s.UserInfo()
		if !ok || strings.TrimSpace(user.Role) == "" {
			return false, ErrRoleUnavailable
		}
		return strings.EqualFold(strings.TrimSpace(user.Role), role), nil
	}
}

// AllowAuthenticated admits any logged-in session. It is meant for backends
// that send no role data and must be chosen explicitly.
func AllowAuthenticated() AdminPolicy {
	return func(s SessionView) (bool, error) {
		return s.IsLoggedIn(), nil
	}
}

// PolicyFromConfig maps a configured policy name to an AdminPolicy.
func PolicyFromConfig(name, role string) (AdminPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "role":
		return RequireRole(role), nil
	case "authenticated":
		return AllowAuthenticated(), nil
	default:
		return nil, fmt.Errorf("unknown admin policy %q", name)
	}
}

// Decision is the outcome of a navigation check. Redirect names the route to
// send the user to when Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   string
}

type Config struct {
	Policy     AdminPolicy
	LoginRoute string
	HomeRoute  string
	Logger     *slog.Logger
}

// Guard gates navigation on route meta and session state.
type Guard struct {
	policy     AdminPolicy
	loginRoute string
	homeRoute  string
	logger     *slog.Logger
}

func New(cfg Config) *Guard {
	g := &Guard{
		policy:     cfg.Policy,
		loginRoute: cfg.LoginRoute,
		homeRoute:  cfg.HomeRoute,
		logger:     cfg.Logger,
	}
	if g.policy == nil {
		g.policy = RequireRole(domain.RoleAdmin)
	}
	if g.loginRoute == "" {
		g.loginRoute = RouteAuth
	}
	if g.homeRoute == "" {
		g.homeRoute = RouteHome
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Check applies the navigation rules in order: login for requiresAuth, then
// login and admin policy for requiresAdmin, otherwise allow.
func (g *Guard) Check(meta domain.RouteMeta, session SessionView) Decision {
	loggedIn := session != nil && session.IsLoggedIn()
	if meta.RequiresAuth && !loggedIn {
		return Decision{Redirect: g.loginRoute, Reason: ReasonLoginRequired}
	}
	if !meta.RequiresAdmin {
		return Decision{Allowed: true}
	}
	if !loggedIn {
		g.audit("guard.admin.authorize", "fail", "reason", ReasonLoginRequired)
		return Decision{Redirect: g.loginRoute, Reason: ReasonLoginRequired}
	}

	user, _ := session.UserInfo()
	allowed, err := g.policy(session)
	switch {
	case errors.Is(err, ErrRoleUnavailable):
		g.audit("guard.admin.authorize", "fail", "user_id", user.ID, "reason", ReasonRoleUnavailable)
		return Decision{Redirect: g.homeRoute, Reason: ReasonRoleUnavailable}
	case err != nil:
		g.audit("guard.admin.authorize", "fail", "user_id", user.ID, "reason", "policy_error", "err", err)
		return Decision{Redirect: g.homeRoute, Reason: ReasonForbidden}
	case !allowed:
		g.audit("guard.admin.authorize", "fail", "user_id", user.ID, "reason", ReasonForbidden)
		return Decision{Redirect: g.homeRoute, Reason: ReasonForbidden}
	}
	g.audit("guard.admin.authorize", "success", "user_id", user.ID)
	return Decision{Allowed: true}
}

// Navigate resolves path against table and checks the result.
func (g *Guard) Navigate(table *Table, path string, session SessionView) (Match, Decision, error) {
	match, err := table.Resolve(path)
	if err != nil {
		return Match{}, Decision{}, fmt.Errorf("%s: %w", path, err)
	}
	return match, g.Check(match.Meta, session), nil
}

func (g *Guard) audit(event, outcome string, attrs ...any) {
	logAttrs := append([]any{"event", event, "outcome", outcome}, attrs...)
	if outcome == "success" {
		g.logger.Info("security_event", logAttrs...)
		return
	}
	g.logger.Warn("security_event", logAttrs...)
}
