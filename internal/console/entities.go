// ABOUTME: Generic entity pages driven by the entity registry
// ABOUTME: List with create form, edit, update and delete for every descriptor, gated by capabilities

package console

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/view"
)

// entityFor resolves the {slug} path value and checks that the entity
// offers need. It writes 404 or 405 and returns false otherwise.
func (c *Console) entityFor(w http.ResponseWriter, r *http.Request, need entity.Capability) (entity.Descriptor, bool) {
	d, err := c.registry.BySlug(r.PathValue("slug"))
	if err != nil {
		http.NotFound(w, r)
		return entity.Descriptor{}, false
	}
	if !d.Can(need) {
		http.Error(w, fmt.Sprintf("%s does not support %s", d.Title, need), http.StatusMethodNotAllowed)
		return entity.Descriptor{}, false
	}
	return d, true
}

func (c *Console) handleEntityList(w http.ResponseWriter, r *http.Request) {
	d, ok := c.entityFor(w, r, entity.CapList)
	if !ok {
		return
	}
	c.renderEntityPage(w, r, d, http.StatusOK, nil, "")
}

// renderEntityPage renders the list page of d. values refills the create
// form after a failed submission.
func (c *Console) renderEntityPage(w http.ResponseWriter, r *http.Request, d entity.Descriptor, status int, values map[string]string, errorMsg string) {
	client := c.apiFor(r)
	data := entityData{
		pageData: c.basePage(r, d.Title, d.Slug),
		Entity:   d,
	}
	data.Error = errorMsg

	recs, err := c.listRecords(r, client, d, &data)
	if err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to load records", "entity", d.Name, "error", err)
		data.LoadFailed = true
		recs = nil
	}

	if filters := c.filters[d.Slug]; len(filters) > 0 && !data.LoadFailed {
		kept, tabs, err := applyFilters(filters, recs, r.URL.Query().Get("filter"), c.config.PendingStatusID)
		if err != nil {
			c.logger.Error("failed to filter records", "entity", d.Name, "error", err)
		} else {
			recs = kept
			data.Tabs = tabs
			data.Stats = statCards(tabs)
			for i := range data.Tabs {
				data.Tabs[i].URL = filterURL(d.Slug, data.Tabs[i].Key, data.RunID)
			}
		}
	}

	table, err := view.TableHTML(view.BuildTable(d.Columns, recs, rowActions(d)), data.CSRFToken)
	if err != nil {
		c.logger.Error("failed to render table", "entity", d.Name, "error", err)
	}
	data.Table = table

	if d.Can(entity.CapCreate) && len(d.Fields) > 0 {
		controls, err := c.controls(r.Context(), client, d, values)
		if err != nil {
			if c.rejected(w, r, err) {
				return
			}
			c.logger.Error("failed to build form", "entity", d.Name, "error", err)
		}
		data.Controls = controls
		data.FormAction = "/" + d.Slug
	}

	c.render(w, status, "entity", data)
}

// listRecords fetches the records of d. Executions can be scoped to a run
// with ?run=<id>.
func (c *Console) listRecords(r *http.Request, client *api.Client, d entity.Descriptor, data *entityData) ([]json.RawMessage, error) {
	if runID := r.URL.Query().Get("run"); runID != "" && d.Resource == "executions" {
		data.RunID = runID
		return client.ExecutionsByRun(r.Context(), runID)
	}
	return entity.Raw(client, d).List(r.Context())
}

func filterURL(slug, key, runID string) string {
	q := url.Values{}
	q.Set("filter", key)
	if runID != "" {
		q.Set("run", runID)
	}
	return "/" + slug + "?" + q.Encode()
}

// statCards turns filter tabs into count cards; the first tab is the total.
func statCards(tabs []filterTab) []statCard {
	cards := make([]statCard, 0, len(tabs))
	for i, t := range tabs {
		label := t.Label
		if i == 0 {
			label = "Total"
		}
		cards = append(cards, statCard{Label: label, Count: t.Count})
	}
	return cards
}

func rowActions(d entity.Descriptor) view.Actions {
	var a view.Actions
	if d.Can(entity.CapUpdate) {
		a.Edit = func(id string) string { return "/" + d.Slug + "/" + url.PathEscape(id) + "/edit" }
	}
	if d.Can(entity.CapDelete) {
		a.Delete = func(id string) string { return "/" + d.Slug + "/" + url.PathEscape(id) + "/delete" }
	}
	return a
}

// controls renders the form fields of d, fetching select options from
// their referenced collections. A failed option fetch leaves that select
// with only its placeholder; the first error is returned.
func (c *Console) controls(ctx context.Context, client *api.Client, d entity.Descriptor, values map[string]string) ([]template.HTML, error) {
	var firstErr error
	out := make([]template.HTML, 0, len(d.Fields))
	for _, f := range d.Fields {
		var opts []view.Option
		if f.OptionsFrom != nil {
			recs, err := client.List(ctx, f.OptionsFrom.Resource)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				opts = []view.Option{}
			} else {
				opts = view.OptionsFromRecords(*f.OptionsFrom, recs)
			}
		}
		html, err := view.ControlHTML(view.NewControl(f, values[f.Name], opts))
		if err != nil {
			return nil, err
		}
		out = append(out, html)
	}
	return out, firstErr
}

// postedValues keeps what the visitor typed, for re-rendering a form.
func postedValues(d entity.Descriptor, form url.Values) map[string]string {
	values := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		if f.Kind != view.KindPassword {
			values[f.Name] = form.Get(f.Name)
		}
	}
	return values
}

func (c *Console) handleEntityCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := c.entityFor(w, r, entity.CapCreate)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		c.renderEntityPage(w, r, d, http.StatusBadRequest, nil, "Invalid form data")
		return
	}
	values := postedValues(d, r.PostForm)
	if !c.validateCSRF(r) {
		c.renderEntityPage(w, r, d, http.StatusForbidden, values, "Invalid request, please try again")
		return
	}

	payload, err := view.Coerce(d.Fields, r.PostForm)
	if err != nil {
		c.renderEntityPage(w, r, d, http.StatusUnprocessableEntity, values, err.Error())
		return
	}

	if _, err := entity.Raw(c.apiFor(r), d).Create(r.Context(), payload); err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to create record", "entity", d.Name, "status", api.StatusCode(err), "error", err)
		c.renderEntityPage(w, r, d, http.StatusBadGateway, values, err.Error())
		return
	}

	c.logger.Info("record created", "entity", d.Name)
	http.Redirect(w, r, "/"+d.Slug, http.StatusSeeOther)
}

func (c *Console) handleEntityEdit(w http.ResponseWriter, r *http.Request) {
	d, ok := c.entityFor(w, r, entity.CapUpdate)
	if !ok {
		return
	}
	id := r.PathValue("id")

	rec, err := c.apiFor(r).Get(r.Context(), d.Resource, id)
	if err != nil {
		if c.rejected(w, r, err) {
			return
		}
		if api.StatusCode(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		c.logger.Error("failed to load record", "entity", d.Name, "id", id, "error", err)
		http.Error(w, "Failed to load "+d.Singular, http.StatusBadGateway)
		return
	}

	c.renderEditPage(w, r, d, id, http.StatusOK, view.Prefill(d.Fields, rec), "")
}

func (c *Console) renderEditPage(w http.ResponseWriter, r *http.Request, d entity.Descriptor, id string, status int, values map[string]string, errorMsg string) {
	data := entityData{
		pageData:   c.basePage(r, "Edit "+d.Singular, d.Slug),
		Entity:     d,
		Editing:    true,
		RecordID:   id,
		FormAction: "/" + d.Slug + "/" + url.PathEscape(id),
	}
	data.Error = errorMsg

	controls, err := c.controls(r.Context(), c.apiFor(r), d, values)
	if err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to build form", "entity", d.Name, "error", err)
	}
	data.Controls = controls
	c.render(w, status, "edit", data)
}

func (c *Console) handleEntityUpdate(w http.ResponseWriter, r *http.Request) {
	d, ok := c.entityFor(w, r, entity.CapUpdate)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		c.renderEditPage(w, r, d, id, http.StatusBadRequest, nil, "Invalid form data")
		return
	}
	values := postedValues(d, r.PostForm)
	if !c.validateCSRF(r) {
		c.renderEditPage(w, r, d, id, http.StatusForbidden, values, "Invalid request, please try again")
		return
	}

	payload, err := view.Coerce(d.Fields, r.PostForm)
	if err != nil {
		c.renderEditPage(w, r, d, id, http.StatusUnprocessableEntity, values, err.Error())
		return
	}

	if _, err := entity.Raw(c.apiFor(r), d).Update(r.Context(), id, payload); err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to update record", "entity", d.Name, "id", id, "error", err)
		c.renderEditPage(w, r, d, id, http.StatusBadGateway, values, err.Error())
		return
	}

	c.logger.Info("record updated", "entity", d.Name, "id", id)
	http.Redirect(w, r, "/"+d.Slug, http.StatusSeeOther)
}

func (c *Console) handleEntityDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := c.entityFor(w, r, entity.CapDelete)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		c.renderEntityPage(w, r, d, http.StatusForbidden, nil, "Invalid request, please try again")
		return
	}

	if _, err := entity.Raw(c.apiFor(r), d).Delete(r.Context(), id); err != nil {
		if c.rejected(w, r, err) {
			return
		}
		c.logger.Error("failed to delete record", "entity", d.Name, "id", id, "error", err)
		c.renderEntityPage(w, r, d, http.StatusBadGateway, nil, err.Error())
		return
	}

	c.logger.Info("record deleted", "entity", d.Name, "id", id)
	http.Redirect(w, r, "/"+d.Slug, http.StatusSeeOther)
}
