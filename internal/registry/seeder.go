package registry

import (
	"context"
	"log/slog"

	"github.com/vinyldesk/vinyldesk/internal/rbac"
)

// RouteStore is the slice of the binding store the seeder reconciles through.
type RouteStore interface {
	ListActiveRoutes(ctx context.Context) ([]rbac.ProjectRoute, error)
	InsertRoutes(ctx context.Context, routes []rbac.ProjectRoute) (int, error)
}

// Result summarizes one reconciliation pass.
type Result struct {
	Discovered int
	Inserted   int
	Skipped    int
}

// Seeder reconciles discovered routes into the permission table. Missing
// pairs are inserted; pairs already present are left untouched, so repeated
// passes and concurrent booters converge on the same state.
type Seeder struct {
	logger *slog.Logger
	store  RouteStore
}

// NewSeeder constructs a seeder.
func NewSeeder(logger *slog.Logger, store RouteStore) *Seeder {
	return &Seeder{logger: logger, store: store}
}

// Reconcile inserts every discovered route not yet persisted. The existing
// set is read in one pass and only the missing (uri, method) pairs are
// written; the store's conflict-ignore insert closes the window against a
// concurrent booter racing the read.
func (s *Seeder) Reconcile(ctx context.Context, entries []Entry) (Result, error) {
	existing, err := s.store.ListActiveRoutes(ctx)
	if err != nil {
		return Result{}, err
	}
	known := make(map[[2]string]struct{}, len(existing))
	for _, route := range existing {
		known[[2]string{route.URI, route.Method}] = struct{}{}
	}

	missing := make([]rbac.ProjectRoute, 0, len(entries))
	for _, entry := range entries {
		if _, ok := known[[2]string{entry.URI, entry.Method}]; ok {
			continue
		}
		missing = append(missing, rbac.NewProjectRoute(entry.URI, entry.Method))
	}

	inserted := 0
	if len(missing) > 0 {
		if inserted, err = s.store.InsertRoutes(ctx, missing); err != nil {
			return Result{}, err
		}
	}
	result := Result{
		Discovered: len(entries),
		Inserted:   inserted,
		Skipped:    len(entries) - inserted,
	}
	s.logger.Info("route permissions reconciled",
		"discovered", result.Discovered,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
	)
	return result, nil
}
