package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturealert/internal/app/models"
)

func hrefs(items []NavItem) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Href)
	}
	return out
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		role models.Role
		want []string
	}{
		{models.RoleAdmin, []string{"/dashboard", "/courses", "/lectures", "/users", "/admin", "/settings"}},
		{models.RoleLecturer, []string{"/dashboard", "/courses", "/lectures", "/my-courses", "/settings"}},
		{models.RoleStudent, []string{"/dashboard", "/courses", "/lectures", "/enrollments", "/settings"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, hrefs(Navigation(tt.role)))
		})
	}
}

func TestNavigation_DoesNotAliasBase(t *testing.T) {
	nav := Navigation(models.RoleAdmin)
	nav[0].Name = "changed"
	assert.Equal(t, "Dashboard", Navigation(models.RoleStudent)[0].Name)
}

func TestRoleBadge(t *testing.T) {
	assert.Equal(t, Badge{Label: "Admin", Color: "red"}, RoleBadge(models.RoleAdmin))
	assert.Equal(t, Badge{Label: "Lecturer", Color: "blue"}, RoleBadge(models.RoleLecturer))
	assert.Equal(t, Badge{Label: "Student", Color: "green"}, RoleBadge(models.RoleStudent))
}

func TestResolve(t *testing.T) {
	student := &models.Identity{ID: "s", Role: models.RoleStudent}
	admin := &models.Identity{ID: "a", Role: models.RoleAdmin}

	tests := []struct {
		name     string
		path     string
		identity *models.Identity
		redirect string
		page     string
	}{
		{"anonymous root", "/", nil, "/auth", ""},
		{"signed-in root", "/", student, "/dashboard", ""},
		{"anonymous auth", "/auth", nil, "", "/auth"},
		{"signed-in auth", "/auth", student, "/dashboard", ""},
		{"anonymous dashboard", "/dashboard", nil, "/auth", ""},
		{"student dashboard", "/dashboard/", student, "", "/dashboard"},
		{"unknown route", "/nope", student, "/", ""},
		{"unknown route anonymous", "/nope", nil, "/", ""},
		{"student on admin page", "/admin", student, "/dashboard", ""},
		{"admin on admin page", "/admin", admin, "", "/admin"},
		{"student enrollments", "/enrollments", student, "", "/enrollments"},
		{"empty path", "", nil, "/auth", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.path, tt.identity)
			assert.Equal(t, tt.redirect, d.Redirect)
			if tt.page == "" {
				assert.Nil(t, d.Page)
				return
			}
			require.NotNil(t, d.Page)
			assert.Equal(t, tt.page, d.Page.Path)
		})
	}
}

func TestPlaceholderMessage(t *testing.T) {
	p, ok := Lookup("/courses")
	require.True(t, ok)
	assert.Equal(t, "Courses coming soon", p.Message())

	d, ok := Lookup("/dashboard")
	require.True(t, ok)
	assert.Empty(t, d.Message())
}

func TestEveryNavigationTargetResolvesForItsRole(t *testing.T) {
	for _, role := range models.Roles {
		identity := &models.Identity{ID: "x", Role: role}
		for _, item := range Navigation(role) {
			d := Resolve(item.Href, identity)
			require.NotNil(t, d.Page, "%s should reach %s", role, item.Href)
		}
	}
}
