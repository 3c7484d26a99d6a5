package financial

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/pkg/money"
)

type RecordRepository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, f RecordFilter, limit, offset int) ([]*Record, int, error)
	// ListAll returns every matching record, ordered by date, for export.
	ListAll(ctx context.Context, companyID uuid.UUID, f RecordFilter) ([]*Record, error)
	// SumByType returns the exact total of records of the given type whose
	// date falls in [start, end].
	SumByType(ctx context.Context, companyID uuid.UUID, recordType string, start, end time.Time) (money.Amount, error)

	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error)
	DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error)
}

type GoalRepository interface {
	Create(ctx context.Context, g *Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	Update(ctx context.Context, g *Goal) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Goal, int, error)
}
