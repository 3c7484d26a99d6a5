package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/domain/procedure"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// LockStatus reads the current status and holds a row lock until the
	// surrounding transaction ends.
	LockStatus(ctx context.Context, id uuid.UUID) (string, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error)
	// ListInRange returns every appointment dated in [start, end], optionally
	// restricted to one collaborator.
	ListInRange(ctx context.Context, companyID uuid.UUID, start, end time.Time, collaboratorID *uuid.UUID) ([]*Appointment, error)
	ListIDsByClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error)

	AddProcedureLink(ctx context.Context, link *ProcedureLink) error
	GetProcedureLinks(ctx context.Context, appointmentID uuid.UUID) ([]*ProcedureLink, error)
	DeleteProcedureLinks(ctx context.Context, appointmentID uuid.UUID) (int, error)
	// ProceduresFor loads the linked procedures of each appointment in
	// position order.
	ProceduresFor(ctx context.Context, appointmentIDs []uuid.UUID) (map[uuid.UUID][]*procedure.Procedure, error)
}
