package fixtures

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/store"
)

// EnsureDefaultSettings fills in every default setting the store is missing.
func EnsureDefaultSettings(ctx context.Context, s store.Store, log logging.Logger) error {
	log.Info("Ensuring default settings")
	if err := s.PopulateDefaults(ctx); err != nil {
		return fmt.Errorf("failed to populate default settings: %w", err)
	}
	return nil
}
