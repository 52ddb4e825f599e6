package repository

import (
	"context"

	"github.com/Sema-5678/topup-service/internal/domain/model"
)

// TopUpStore is the durable store of top-up records, keyed by record id.
// Implementations must serialize read-modify-write sequences so that
// concurrent Patch/Upsert calls from the same process never lose updates.
type TopUpStore interface {
	// Get returns the current record, or nil if the id is absent.
	Get(ctx context.Context, id string) (*model.TopUpRecord, error)

	// Upsert inserts or fully replaces a record. Used only at creation.
	Upsert(ctx context.Context, record *model.TopUpRecord) error

	// Patch merges the given fields into an existing record atomically and
	// returns the updated record. Returns nil (and no error) if the id is
	// absent; a patch never creates a record. Records that already reached
	// a terminal status are immutable: patching one returns a
	// TerminalStateError, evaluated inside the same critical section as
	// the write so racing status transitions cannot override each other.
	Patch(ctx context.Context, id string, patch model.TopUpPatch) (*model.TopUpRecord, error)

	// ScanOpen returns all records whose status is non-terminal.
	ScanOpen(ctx context.Context) (map[string]*model.TopUpRecord, error)
}
