package partner

import (
	"context"

	"github.com/google/uuid"
)

// PartnerRepository defines the interface for partner persistence
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	Save(ctx context.Context, p *Partner) error
}
