// ABOUTME: Template data types and rendering for console pages
// ABOUTME: Each page is parsed from the embedded filesystem together with the base layout

package console

import (
	"html/template"
	"net/http"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/session"
)

// navItem is one sidebar link.
type navItem struct {
	Title  string
	URL    string
	Active bool
}

type navGroup struct {
	Title string
	Items []navItem
}

// pageData is shared by every page rendered inside the base layout.
type pageData struct {
	Title     string
	SignedIn  bool
	User      *session.Claims
	UserName  string
	CSRFToken string
	Nav       []navGroup
	Error     string
	Notice    string
}

type loginData struct {
	pageData
	Register bool
	Email    string
	First    string
	Last     string
}

type dashboardData struct {
	pageData
	Runs       template.HTML
	LoadFailed bool
}

type hubData struct {
	pageData
	Groups []entity.Group
}

type entityData struct {
	pageData
	Entity     entity.Descriptor
	Table      template.HTML
	LoadFailed bool
	Tabs       []filterTab
	Stats      []statCard
	RunID      string

	// Create or edit form; nil when the entity offers neither.
	Controls   []template.HTML
	FormAction string
	Editing    bool
	RecordID   string
}

// statCard is a count shown above a filtered table.
type statCard struct {
	Label string
	Count int
}

type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

type helpData struct {
	pageData
	Topics  []helpTopic
	Content template.HTML
}

// basePage fills the data every signed-in page needs.
func (c *Console) basePage(r *http.Request, title, activeSlug string) pageData {
	user := c.gate.CurrentUser(r)
	return pageData{
		Title:     title,
		SignedIn:  c.gate.IsAuthenticated(r),
		User:      user,
		UserName:  user.DisplayName(),
		CSRFToken: getCSRFToken(r),
		Nav:       c.nav(activeSlug),
	}
}

// nav builds the sidebar from the registry groups.
func (c *Console) nav(active string) []navGroup {
	groups := []navGroup{{
		Title: "Overview",
		Items: []navItem{
			{Title: "Dashboard", URL: "/", Active: active == ""},
			{Title: "Test Management", URL: "/test-management", Active: active == "test-management"},
		},
	}}
	for _, g := range c.registry.Groups() {
		ng := navGroup{Title: g.Title}
		for _, d := range g.Entities {
			ng.Items = append(ng.Items, navItem{Title: d.Title, URL: "/" + d.Slug, Active: d.Slug == active})
		}
		groups = append(groups, ng)
	}
	groups = append(groups, navGroup{
		Title: "Support",
		Items: []navItem{{Title: "Help", URL: "/help", Active: active == "help"}},
	})
	return groups
}

// render executes page inside the base layout.
func (c *Console) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+page+".html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		c.logger.Error("failed to render page", "page", page, "error", err)
	}
}
