package subcontracting

import (
	"context"

	"github.com/google/uuid"
)

// WorksheetStore keeps transient worksheets between editing calls
type WorksheetStore interface {
	// Save creates or replaces the worksheet and refreshes its expiry
	Save(ctx context.Context, w *Worksheet) error
	// Get returns shared.ErrNotFound for unknown or expired worksheets
	Get(ctx context.Context, id uuid.UUID) (*Worksheet, error)
	// Delete removes the worksheet; deleting a missing one is not an error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkSubmitted records that the worksheet was committed. It returns false
	// when it already was.
	MarkSubmitted(ctx context.Context, id uuid.UUID) (bool, error)
	// ReleaseSubmitted clears the marker after a failed commit
	ReleaseSubmitted(ctx context.Context, id uuid.UUID) error
}
