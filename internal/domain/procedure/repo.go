package procedure

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error)
	Update(ctx context.Context, p *Procedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Procedure, int, error)
	// CountAppointmentLinks counts appointments referencing the procedure,
	// through the junction table or the legacy primary reference.
	CountAppointmentLinks(ctx context.Context, id uuid.UUID) (int, error)
}
