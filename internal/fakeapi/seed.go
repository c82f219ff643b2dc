// ABOUTME: Start-up seeding of tester accounts and records for the stub API
// ABOUTME: Only fills empty collections so restarts against a file database are idempotent

package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/store"
)

// Seed creates the configured testers and records.
func (s *Server) Seed(ctx context.Context, cfg *Config) error {
	for _, t := range cfg.Testers {
		_, err := RegisterTester(ctx, s.store, t.Email, t.Password, t.FirstName, t.LastName)
		if errors.Is(err, store.ErrEmailExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding tester %s: %w", t.Email, err)
		}
		s.logger.Info("seeded tester", "email", t.Email)
	}

	collections := make([]string, 0, len(cfg.Seed))
	for c := range cfg.Seed {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	for _, c := range collections {
		d, err := s.registry.ByResource(c)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", c, err)
		}
		existing, err := s.store.ListRecords(ctx, d.Resource)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", c, err)
		}
		if len(existing) > 0 {
			continue
		}
		for i, fields := range cfg.Seed[c] {
			if err := validate(d, fields, true); err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", c, i, err)
			}
			if _, err := s.store.CreateRecord(ctx, d.Resource, fields); err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", c, i, err)
			}
		}
		s.logger.Info("seeded records", "collection", c, "count", len(cfg.Seed[c]))
	}
	return nil
}
