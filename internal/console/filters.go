// ABOUTME: Record filters compiled from expr-lang predicates
// ABOUTME: Backs the filter tabs and stat cards of entity pages such as executions

package console

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
)

type compiledFilter struct {
	entity.Filter
	program *vm.Program
}

func compileFilters(filters []entity.Filter) ([]compiledFilter, error) {
	out := make([]compiledFilter, 0, len(filters))
	for _, f := range filters {
		program, err := expr.Compile(f.Expr, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling filter %q: %w", f.Key, err)
		}
		out = append(out, compiledFilter{Filter: f, program: program})
	}
	return out, nil
}

// recordEnv is the expression environment for one record: its fields plus
// the pending status id. JSON numbers decode as float64, so pending does too.
func recordEnv(rec json.RawMessage, pending int64) (map[string]any, error) {
	env := make(map[string]any)
	if err := json.Unmarshal(rec, &env); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	env[entity.PendingVar] = float64(pending)
	return env, nil
}

func (f compiledFilter) match(env map[string]any) (bool, error) {
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.Key, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// filterTab is one tab above a filtered table.
type filterTab struct {
	Key    string
	Label  string
	Count  int
	URL    string
	Active bool
}

// applyFilters counts records per filter and returns those matching the
// selected one. An unknown key selects the first filter.
func applyFilters(filters []compiledFilter, recs []json.RawMessage, selected string, pending int64) ([]json.RawMessage, []filterTab, error) {
	active := 0
	for i, f := range filters {
		if f.Key == selected {
			active = i
		}
	}

	tabs := make([]filterTab, len(filters))
	for i, f := range filters {
		tabs[i] = filterTab{Key: f.Key, Label: f.Label, Active: i == active}
	}

	kept := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		env, err := recordEnv(rec, pending)
		if err != nil {
			return nil, nil, err
		}
		for i, f := range filters {
			ok, err := f.match(env)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			tabs[i].Count++
			if i == active {
				kept = append(kept, rec)
			}
		}
	}
	return kept, tabs, nil
}
