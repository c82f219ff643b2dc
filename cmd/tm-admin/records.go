// ABOUTME: Generic record commands over the entity registry
// ABOUTME: entities, list, get, create, update, delete and runs

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/view"
)

func (c *cli) entitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities the API offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := c.registry.All()
			if c.flagJSON {
				type row struct {
					Name     string `json:"name"`
					Slug     string `json:"slug"`
					Resource string `json:"resource"`
					Verbs    string `json:"verbs"`
				}
				rows := make([]row, 0, len(all))
				for _, d := range all {
					rows = append(rows, row{d.Name, d.Slug, d.Resource, d.Caps.String()})
				}
				return c.printJSON(rows)
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  NAME\tSLUG\tRESOURCE\tVERBS")
			fmt.Fprintln(w, "  ----\t----\t--------\t-----")
			for _, d := range all {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Name, d.Slug, d.Resource, d.Caps)
			}
			return w.Flush()
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "List records of an entity",
		Long: `List fetches every record of an entity. The entity may be given by name,
slug or resource, e.g. testSuites, test-suites or test_suites.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.descriptor(args[0])
			if err != nil {
				return err
			}
			recs, err := entity.Raw(c.client, d).List(cmd.Context())
			if err != nil {
				return err
			}
			return c.printRecords(d.Columns, recs)
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.descriptor(args[0])
			if err != nil {
				return err
			}
			rec, err := entity.Raw(c.client, d).Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return c.printJSON(*rec)
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create <entity> [field=value ...]",
		Short: "Create a record",
		Long: `Create sends field=value pairs, converted the way the console form does,
or a raw JSON object given with --data.

Example:
  tm-admin create scenarios name=Checkout
  tm-admin create resolutions --data '{"w":1920,"h":1080}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.descriptor(args[0])
			if err != nil {
				return err
			}
			payload, err := buildPayload(d.Fields, args[1:], data)
			if err != nil {
				return err
			}
			rec, err := entity.Raw(c.client, d).Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return c.printJSON(*rec)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "raw JSON object to send")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <entity> <id> [field=value ...]",
		Short: "Update fields of a record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.descriptor(args[0])
			if err != nil {
				return err
			}
			payload, err := buildPayload(optional(d.Fields), args[2:], data)
			if err != nil {
				return err
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to update")
			}
			rec, err := entity.Raw(c.client, d).Update(cmd.Context(), args[1], payload)
			if err != nil {
				return err
			}
			return c.printJSON(*rec)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "raw JSON object to send")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.descriptor(args[0])
			if err != nil {
				return err
			}
			if _, err := entity.Raw(c.client, d).Delete(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted %s %s\n", d.Singular, args[1])
			return nil
		},
	}
}

func (c *cli) runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List runs, or the executions of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				d, err := c.registry.ByResource("runs")
				if err != nil {
					return err
				}
				recs, err := entity.Raw(c.client, d).List(cmd.Context())
				if err != nil {
					return err
				}
				return c.printRecords(d.Columns, recs)
			}

			d, err := c.registry.ByResource("executions")
			if err != nil {
				return err
			}
			recs, err := c.client.ExecutionsByRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printRecords(d.Columns, recs)
		},
	}
}

// buildPayload turns field=value pairs into a payload using the form
// conversion rules, or decodes raw JSON when data is set.
func buildPayload(fields []view.Field, pairs []string, data string) (map[string]any, error) {
	if data != "" {
		if len(pairs) > 0 {
			return nil, fmt.Errorf("use either --data or field=value pairs, not both")
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return nil, fmt.Errorf("parse --data: %w", err)
		}
		return payload, nil
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	form := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", p)
		}
		if !known[key] {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		form.Set(key, value)
	}
	return view.Coerce(fields, form)
}

// optional copies fields with Required cleared, for partial updates.
func optional(fields []view.Field) []view.Field {
	out := make([]view.Field, len(fields))
	copy(out, fields)
	for i := range out {
		out[i].Required = false
	}
	return out
}

func (c *cli) printRecords(columns []view.Column, recs []json.RawMessage) error {
	if c.flagJSON {
		if recs == nil {
			recs = []json.RawMessage{}
		}
		return c.printJSON(recs)
	}
	return view.RenderText(c.out, view.BuildTable(columns, recs, view.Actions{}))
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
