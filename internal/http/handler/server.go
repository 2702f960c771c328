// Package handler implements the task-storage API endpoints.
package handler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/recurring"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

// MaxTextBytes is the storage limit for item text.
const MaxTextBytes = 4096

// DefaultGenerationHorizonDays bounds server-side expansion of recurring
// creates. It must match the client default so both sides materialize the
// same instance batch.
const DefaultGenerationHorizonDays = 90

// Config holds handler configuration.
type Config struct {
	GenerationHorizonDays int
}

// Server holds the endpoint implementations.
type Server struct {
	store     *repository.Store
	generator *recurring.Generator
	cfg       Config
}

// NewServer creates the API server handlers on top of the repository.
func NewServer(store *repository.Store, cfg Config) *Server {
	if cfg.GenerationHorizonDays <= 0 {
		cfg.GenerationHorizonDays = DefaultGenerationHorizonDays
	}
	return &Server{
		store:     store,
		generator: recurring.NewGenerator(newPersistedID),
		cfg:       cfg,
	}
}

// newPersistedID mints a server identity. UUIDv7 keeps IDs roughly
// time-ordered in the index.
func newPersistedID() domain.ItemID {
	id, err := uuid.NewV7()
	if err != nil {
		// Extremely rare; fall back to v4 rather than failing the call.
		return domain.PersistedID(uuid.NewString())
	}
	return domain.PersistedID(id.String())
}

func validateText(text string) error {
	if len(text) > MaxTextBytes {
		return fmt.Errorf("%w: %d bytes", domain.ErrTextTooLong, len(text))
	}
	return nil
}
