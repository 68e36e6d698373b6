// Package shell selects navigation and resolves page routes for an identity.
package shell

import (
	"strings"

	"github.com/yigit/lecturealert/internal/app/models"
)

// Well-known paths
const (
	PathRoot      = "/"
	PathAuth      = "/auth"
	PathDashboard = "/dashboard"
)

// NavItem is one entry of the sidebar
type NavItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Icon string `json:"icon"`
}

// Badge is the role chip shown next to the user
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Page describes a routable screen. Nil Roles means every signed-in role.
type Page struct {
	Path        string        `json:"path"`
	Title       string        `json:"title"`
	Roles       []models.Role `json:"-"`
	Public      bool          `json:"-"`
	Placeholder bool          `json:"placeholder"`
}

// Message is the body shown by placeholder pages
func (p Page) Message() string {
	if !p.Placeholder {
		return ""
	}
	return p.Title + " coming soon"
}

func (p Page) allows(role models.Role) bool {
	if p.Roles == nil {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	base = []NavItem{
		{Name: "Dashboard", Href: "/dashboard", Icon: "layout-dashboard"},
		{Name: "Courses", Href: "/courses", Icon: "book-open"},
		{Name: "Lectures", Href: "/lectures", Icon: "calendar"},
	}
	settings = NavItem{Name: "Settings", Href: "/settings", Icon: "settings"}

	byRole = map[models.Role][]NavItem{
		models.RoleAdmin: {
			{Name: "Users", Href: "/users", Icon: "users"},
			{Name: "Admin Panel", Href: "/admin", Icon: "shield"},
		},
		models.RoleLecturer: {
			{Name: "My Courses", Href: "/my-courses", Icon: "graduation-cap"},
		},
		models.RoleStudent: {
			{Name: "My Enrollments", Href: "/enrollments", Icon: "clipboard-list"},
		},
	}

	badgeColors = map[models.Role]string{
		models.RoleAdmin:    "red",
		models.RoleLecturer: "blue",
		models.RoleStudent:  "green",
	}

	pages = []Page{
		{Path: PathAuth, Title: "Sign in", Public: true},
		{Path: PathDashboard, Title: "Dashboard"},
		{Path: "/courses", Title: "Courses", Placeholder: true},
		{Path: "/lectures", Title: "Lectures", Placeholder: true},
		{Path: "/users", Title: "Users Management", Roles: []models.Role{models.RoleAdmin}, Placeholder: true},
		{Path: "/admin", Title: "Admin Panel", Roles: []models.Role{models.RoleAdmin}, Placeholder: true},
		{Path: "/my-courses", Title: "My Courses", Roles: []models.Role{models.RoleLecturer}, Placeholder: true},
		{Path: "/enrollments", Title: "My Enrollments", Roles: []models.Role{models.RoleStudent}, Placeholder: true},
		{Path: "/settings", Title: "Settings", Placeholder: true},
	}
)

// Navigation lists the sidebar entries for role: the shared entries, then the
// role's own, then Settings.
func Navigation(role models.Role) []NavItem {
	extra := byRole[role]
	items := make([]NavItem, 0, len(base)+len(extra)+1)
	items = append(items, base...)
	items = append(items, extra...)
	return append(items, settings)
}

// RoleBadge returns the chip for role
func RoleBadge(role models.Role) Badge {
	color, ok := badgeColors[role]
	if !ok {
		color = "gray"
	}
	return Badge{Label: role.Label(), Color: color}
}

// Pages returns the page catalogue
func Pages() []Page {
	return append([]Page(nil), pages...)
}

// Lookup finds the page registered at path
func Lookup(path string) (Page, bool) {
	path = clean(path)
	for _, p := range pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

// Decision is either a page to render or a redirect target
type Decision struct {
	Page     *Page
	Redirect string
}

// Resolve routes path for identity (nil when signed out). Gating here only
// picks what to show; the store enforces access itself.
func Resolve(path string, identity *models.Identity) Decision {
	path = clean(path)

	if path == PathRoot {
		if identity == nil {
			return Decision{Redirect: PathAuth}
		}
		return Decision{Redirect: PathDashboard}
	}

	page, ok := Lookup(path)
	if !ok {
		return Decision{Redirect: PathRoot}
	}

	switch {
	case page.Public && identity != nil:
		return Decision{Redirect: PathDashboard}
	case page.Public:
		return Decision{Page: &page}
	case identity == nil:
		return Decision{Redirect: PathAuth}
	case !page.allows(identity.Role):
		return Decision{Redirect: PathDashboard}
	default:
		return Decision{Page: &page}
	}
}

func clean(path string) string {
	if path == "" {
		return PathRoot
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return PathRoot
		}
	}
	return path
}
