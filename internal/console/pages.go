// ABOUTME: Dashboard, test-management hub, help and static asset handlers
// ABOUTME: Help topics are embedded markdown rendered with goldmark

package console

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/view"
)

// dashboardColumns are the columns of the "Recent Runs" table.
var dashboardColumns = []view.Column{
	{Key: "id", Title: "ID"},
	{Key: "name", Title: "Name"},
	{Key: "project_id", Title: "Project ID"},
	{Key: "started_at", Title: "Started At", Render: view.Timestamp("Not started")},
	{Key: "done_at", Title: "Completed At", Render: view.Timestamp("In progress")},
}

// handleDashboard shows the most recent runs
func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{pageData: c.basePage(r, "Dashboard", "")}

	runs, err := c.apiFor(r).List(r.Context(), "runs")
	if err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to load runs", "error", err)
		data.LoadFailed = true
		runs = nil
	}
	if len(runs) > DashboardRuns {
		runs = runs[:DashboardRuns]
	}

	table, err := view.TableHTML(view.BuildTable(dashboardColumns, runs, view.Actions{}), data.CSRFToken)
	if err != nil {
		c.logger.Error("failed to render runs table", "error", err)
	}
	data.Runs = table
	c.render(w, http.StatusOK, "dashboard", data)
}

// handleHub lists every entity by group
func (c *Console) handleHub(w http.ResponseWriter, r *http.Request) {
	c.render(w, http.StatusOK, "hub", hubData{
		pageData: c.basePage(r, "Test Management", "test-management"),
		Groups:   c.registry.Groups(),
	})
}

// handleStatic serves embedded CSS
func (c *Console) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(r.PathValue("file"))
	if _, err := fs.Stat(staticFS, "static/"+name); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, staticFS, "static/"+name)
}

// helpOrder sorts help topics; unknown topics go last, by slug.
var helpOrder = map[string]int{
	"getting-started": 1,
	"entities":        2,
	"executions":      3,
	"configuration":   4,
	"tailscale":       5,
}

const defaultHelpTopic = "getting-started"

func (c *Console) handleHelpIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/help/"+defaultHelpTopic, http.StatusSeeOther)
}

// handleHelp renders one help topic with the topic list
func (c *Console) handleHelp(w http.ResponseWriter, r *http.Request) {
	selected := r.PathValue("page")

	entries, err := fs.ReadDir(helpFS, "help")
	if err != nil {
		c.logger.Error("failed to read help topics", "error", err)
	}

	var topics []helpTopic
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		if slug == selected {
			found = true
		}
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selected,
		})
	}
	sort.Slice(topics, func(i, j int) bool {
		orderI, okI := helpOrder[topics[i].Slug]
		orderJ, okJ := helpOrder[topics[j].Slug]
		if !okI {
			orderI = 100
		}
		if !okJ {
			orderJ = 100
		}
		if orderI != orderJ {
			return orderI < orderJ
		}
		return topics[i].Slug < topics[j].Slug
	})

	status := http.StatusOK
	var mdContent []byte
	if found {
		mdContent, err = helpFS.ReadFile("help/" + selected + ".md")
		if err != nil {
			c.logger.Error("failed to read help topic", "topic", selected, "error", err)
		}
	}
	if mdContent == nil {
		status = http.StatusNotFound
		mdContent = []byte("# Not Found\n\nThis help topic could not be found.")
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
		c.logger.Error("failed to convert markdown", "error", err)
		htmlBuf.Reset()
		htmlBuf.WriteString("<p>Failed to render help content.</p>")
	}

	c.render(w, status, "help", helpData{
		pageData: c.basePage(r, "Help", "help"),
		Topics:   topics,
		Content:  template.HTML(htmlBuf.String()),
	})
}

// formatHelpTitle converts a slug to a display title
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
