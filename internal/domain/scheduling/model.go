package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/domain/procedure"
	"github.com/beautydesk/beautydesk/pkg/money"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Transitions are not enforced; any known status may follow any other.
var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Appointment books a client with a collaborator for one or more
// procedures. Value is the sum of the procedure prices at the time the
// appointment was last written.
type Appointment struct {
	ID             uuid.UUID `json:"id"`
	CompanyID      uuid.UUID `json:"companyId"`
	ClientID       uuid.UUID `json:"clientId"`
	CollaboratorID uuid.UUID `json:"collaboratorId"`

	// ProcedureID is the first linked procedure, kept for older clients.
	ProcedureID *uuid.UUID   `json:"procedureId,omitempty"`
	Date        time.Time    `json:"date"`
	Status      string       `json:"status"`
	Value       money.Amount `json:"value"`
	Notes       *string      `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	ClientName       string                 `json:"clientName,omitempty"`
	CollaboratorName string                 `json:"collaboratorName,omitempty"`
	Procedures       []*procedure.Procedure `json:"procedures"`
}

// ProcedureLink is one row of the appointment/procedure junction.
type ProcedureLink struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	ProcedureID   uuid.UUID `json:"procedureId"`
	Position      int       `json:"position"`
}

// ListFilter narrows appointment listings. Zero values match everything.
type ListFilter struct {
	Start          *time.Time
	End            *time.Time
	CollaboratorID *uuid.UUID
	ClientID       *uuid.UUID
	Status         string
}

// Viewer is the caller a read is performed for. Non-admins only see
// appointments they are the collaborator on.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

// CanSee reports whether the viewer may read a.
func (v Viewer) CanSee(a *Appointment) bool {
	return v.Admin || a.CollaboratorID == v.UserID
}

// CreateInput carries the fields of a new appointment.
type CreateInput struct {
	ClientID       uuid.UUID
	CollaboratorID uuid.UUID
	ProcedureIDs   []uuid.UUID
	Date           time.Time
	Status         string
	Notes          *string
}

// UpdateInput carries a partial update. Nil fields keep their current
// value; a nil ProcedureIDs re-prices the procedures already linked.
type UpdateInput struct {
	ClientID       *uuid.UUID
	CollaboratorID *uuid.UUID
	ProcedureIDs   []uuid.UUID
	Date           *time.Time
	Status         *string
	Notes          *string
}
