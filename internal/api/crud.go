// ABOUTME: Generic CRUD verbs mapped onto REST path segments
// ABOUTME: list/get/create/update/delete plus the run-scoped executions listing

package api

import (
	"context"
	"net/http"
	"net/url"
)

// List fetches every record of a collection: GET base/resource.
func (c *Client) List(ctx context.Context, resource string) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, OpFetch, resource, http.MethodGet, resource, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record: GET base/resource/id.
func (c *Client) Get(ctx context.Context, resource, id string) (Record, error) {
	var out Record
	if err := c.do(ctx, OpFetch, resource, http.MethodGet, itemPath(resource, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts payload as JSON and returns the stored record.
func (c *Client) Create(ctx context.Context, resource string, payload any) (Record, error) {
	var out Record
	if err := c.do(ctx, OpCreate, resource, http.MethodPost, resource, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update sends a partial update with PATCH.
func (c *Client) Update(ctx context.Context, resource, id string, payload any) (Record, error) {
	var out Record
	if err := c.do(ctx, OpUpdate, resource, http.MethodPatch, itemPath(resource, id), payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record and returns the server's confirmation body,
// which may be empty.
func (c *Client) Delete(ctx context.Context, resource, id string) (Record, error) {
	var out Record
	if err := c.do(ctx, OpDelete, resource, http.MethodDelete, itemPath(resource, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecutionsByRun lists the executions of one run: GET executions/run/{id}.
func (c *Client) ExecutionsByRun(ctx context.Context, runID string) ([]Record, error) {
	var out []Record
	path := "executions/run/" + url.PathEscape(runID)
	if err := c.do(ctx, OpFetch, "executions", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func itemPath(resource, id string) string {
	return resource + "/" + url.PathEscape(id)
}
