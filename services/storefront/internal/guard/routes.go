package guard

import (
	"errors"
	"strings"

	"onlinemall/pkg/domain"
)

// Route names of the storefront.
const (
	RouteHome                 = "home"
	RouteProductList          = "productList"
	RouteProductDetail        = "productDetail"
	RouteAuth                 = "auth"
	RouteCart                 = "cart"
	RouteOrders               = "orders"
	RouteCheckoutSuccess      = "checkoutSuccess"
	RouteAdmin                = "admin"
	RouteAdminProductList     = "adminProductList"
	RouteAdminUserList        = "adminUserList"
	RouteAdminBehaviors       = "adminBehaviors"
	RouteAdminRecommendations = "adminRecommendations"
)

var ErrRouteNotFound = errors.New("route not found")

// Route is a static route record. Child paths are relative to the parent.
type Route struct {
	Name     string
	Path     string
	Meta     domain.RouteMeta
	Children []Route
}

// Match is a resolved route with its effective meta and path parameters.
type Match struct {
	Name   string
	Path   string
	Meta   domain.RouteMeta
	Params map[string]string
}

type entry struct {
	name     string
	path     string
	segments []string
	meta     domain.RouteMeta
}

// Table resolves paths against a flattened route tree.
type Table struct {
	entries []entry
	byName  map[string]entry
}

// NewTable flattens routes. A child inherits every flag its parent sets.
func NewTable(routes []Route) *Table {
	t := &Table{byName: make(map[string]entry)}
	for _, r := range routes {
		t.add(r, "", domain.RouteMeta{})
	}
	return t
}

func (t *Table) add(r Route, parentPath string, parentMeta domain.RouteMeta) {
	full := joinPath(parentPath, r.Path)
	meta := domain.RouteMeta{
		RequiresAuth:  parentMeta.RequiresAuth || r.Meta.RequiresAuth,
		RequiresAdmin: parentMeta.RequiresAdmin || r.Meta.RequiresAdmin,
	}
	e := entry{name: r.Name, path: full, segments: splitPath(full), meta: meta}
	t.entries = append(t.entries, e)
	if r.Name != "" {
		t.byName[r.Name] = e
	}
	for _, child := range r.Children {
		t.add(child, full, meta)
	}
}

// Resolve finds the first route matching path. ":name" segments match any
// single non-empty segment and are returned as params.
func (t *Table) Resolve(path string) (Match, error) {
	segments := splitPath(path)
	for _, e := range t.entries {
		params, ok := matchSegments(e.segments, segments)
		if !ok {
			continue
		}
		return Match{Name: e.name, Path: e.path, Meta: e.meta, Params: params}, nil
	}
	return Match{}, ErrRouteNotFound
}

// Named returns the route registered under name.
func (t *Table) Named(name string) (Match, error) {
	e, ok := t.byName[name]
	if !ok {
		return Match{}, ErrRouteNotFound
	}
	return Match{Name: e.name, Path: e.path, Meta: e.meta}, nil
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || parent == "" {
		return "/" + strings.Trim(child, "/")
	}
	return "/" + strings.Trim(strings.Trim(parent, "/")+"/"+strings.Trim(child, "/"), "/")
}

func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// DefaultRoutes is the storefront and admin console route tree.
func DefaultRoutes() []Route {
	auth := domain.RouteMeta{RequiresAuth: true}
	return []Route{
		{Name: RouteHome, Path: "/"},
		{Name: RouteProductList, Path: "/products"},
		{Name: RouteProductDetail, Path: "/product/:id"},
		{Name: RouteAuth, Path: "/auth"},
		{Name: RouteCart, Path: "/cart", Meta: auth},
		{Name: RouteOrders, Path: "/orders", Meta: auth},
		{Name: RouteCheckoutSuccess, Path: "/checkout-success", Meta: auth},
		{
			Name: RouteAdmin,
			Path: "/admin",
			Meta: domain.RouteMeta{RequiresAdmin: true},
			Children: []Route{
				{Name: RouteAdminProductList, Path: "products"},
				{Name: RouteAdminUserList, Path: "users"},
				{Name: RouteAdminBehaviors, Path: "behaviors"},
				{Name: RouteAdminRecommendations, Path: "recommendations"},
			},
		},
	}
}
