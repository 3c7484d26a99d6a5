package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/beautydesk/beautydesk/internal/domain/client"
	"github.com/beautydesk/beautydesk/internal/domain/company"
	"github.com/beautydesk/beautydesk/internal/domain/financial"
	"github.com/beautydesk/beautydesk/internal/domain/procedure"
	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

type ClientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*company.User, error)
}

type PricingResolver interface {
	Resolve(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (*procedure.Resolution, error)
}

// LedgerRepository is the part of the financial record store the
// appointment workflow writes through.
type LedgerRepository interface {
	Create(ctx context.Context, r *financial.Record) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*financial.Record, error)
	Update(ctx context.Context, r *financial.Record) error
	DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error)
}

// Service keeps an appointment, its procedure links and its income record
// consistent. Every write runs in one transaction.
type Service struct {
	appointments AppointmentRepository
	ledger       LedgerRepository
	clients      ClientLookup
	users        UserLookup
	pricing      PricingResolver
	tx           db.Transactor
	now          func() time.Time
}

func NewService(appts AppointmentRepository, ledger LedgerRepository, clients ClientLookup, users UserLookup, pricing PricingResolver, tx db.Transactor) *Service {
	return &Service{
		appointments: appts,
		ledger:       ledger,
		clients:      clients,
		users:        users,
		pricing:      pricing,
		tx:           tx,
		now:          time.Now,
	}
}

// Create prices the procedures, checks the client and collaborator, then
// writes the appointment, its procedure links and its income record.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, in CreateInput) (*Appointment, error) {
	res, err := s.pricing.Resolve(ctx, companyID, in.ProcedureIDs)
	if err != nil {
		return nil, err
	}
	cl, err := s.checkClient(ctx, companyID, in.ClientID)
	if err != nil {
		return nil, err
	}
	collaborator, err := s.checkCollaborator(ctx, companyID, in.CollaboratorID)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	status := in.Status
	if status == "" {
		status = StatusScheduled
	}
	if !ValidStatus(status) {
		return nil, apperr.Validation("invalid status %q", status)
	}

	primary := res.Primary().ID
	a := &Appointment{
		CompanyID:      companyID,
		ClientID:       cl.ID,
		CollaboratorID: collaborator.ID,
		ProcedureID:    &primary,
		Date:           in.Date,
		Status:         status,
		Value:          res.Total,
		Notes:          trimNotes(in.Notes),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.Create(ctx, a); err != nil {
			return err
		}
		if err := s.linkProcedures(ctx, a.ID, res); err != nil {
			return err
		}
		return s.ledger.Create(ctx, incomeRecord(a, cl.Name, a.Date))
	})
	if err != nil {
		return nil, err
	}

	a.ClientName = cl.Name
	a.CollaboratorName = collaborator.Name
	a.Procedures = res.Procedures
	log.Ctx(ctx).Info().
		Str("appointment_id", a.ID.String()).
		Str("value", a.Value.String()).
		Int("procedures", len(res.Procedures)).
		Msg("appointment created")
	return a, nil
}

// Update applies a partial update. The procedure set is replaced and the
// value recomputed; moving into "completed" syncs the income record.
func (s *Service) Update(ctx context.Context, companyID, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	existing, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	ids := in.ProcedureIDs
	if ids == nil {
		if ids, err = s.currentProcedureIDs(ctx, existing); err != nil {
			return nil, err
		}
	}
	res, err := s.pricing.Resolve(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if in.ClientID != nil {
		cl, err := s.checkClient(ctx, companyID, *in.ClientID)
		if err != nil {
			return nil, err
		}
		updated.ClientID, updated.ClientName = cl.ID, cl.Name
	}
	if in.CollaboratorID != nil {
		collaborator, err := s.checkCollaborator(ctx, companyID, *in.CollaboratorID)
		if err != nil {
			return nil, err
		}
		updated.CollaboratorID, updated.CollaboratorName = collaborator.ID, collaborator.Name
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperr.Validation("date is required")
		}
		updated.Date = *in.Date
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, apperr.Validation("invalid status %q", *in.Status)
		}
		updated.Status = *in.Status
	}
	if in.Notes != nil {
		updated.Notes = trimNotes(in.Notes)
	}
	primary := res.Primary().ID
	updated.ProcedureID = &primary
	updated.Value = res.Total

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Completion is judged against the locked row, not the earlier read.
		previous, err := s.appointments.LockStatus(ctx, updated.ID)
		if err != nil {
			return err
		}
		completing := updated.Status == StatusCompleted && previous != StatusCompleted
		if in.Status == nil {
			updated.Status = previous
			completing = false
		}
		if err := s.appointments.Update(ctx, &updated); err != nil {
			return err
		}
		if _, err := s.appointments.DeleteProcedureLinks(ctx, updated.ID); err != nil {
			return err
		}
		if err := s.linkProcedures(ctx, updated.ID, res); err != nil {
			return err
		}
		if completing {
			return s.syncCompletion(ctx, &updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// syncCompletion sets the income record to the appointment's value, dated
// now. A missing record is recreated.
func (s *Service) syncCompletion(ctx context.Context, a *Appointment) error {
	now := s.now()
	rec, err := s.ledger.GetByAppointment(ctx, a.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Ctx(ctx).Warn().Str("appointment_id", a.ID.String()).Msg("completed appointment had no financial record, creating one")
		return s.ledger.Create(ctx, incomeRecord(a, a.ClientName, now))
	}
	if err != nil {
		return err
	}
	rec.Value = a.Value
	rec.Date = now
	return s.ledger.Update(ctx, rec)
}

// Delete removes the income record, the procedure links and the
// appointment, in that order.
func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.load(ctx, companyID, id); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.remove(ctx, id)
	})
}

// DeleteByClient deletes every appointment of a client. It joins the
// caller's transaction when there is one.
func (s *Service) DeleteByClient(ctx context.Context, companyID, clientID uuid.UUID) (int, error) {
	n := 0
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := s.appointments.ListIDsByClient(ctx, clientID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := s.load(ctx, companyID, id); err != nil {
				return err
			}
			if err := s.remove(ctx, id); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Service) remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.ledger.DeleteByAppointment(ctx, id); err != nil {
		return err
	}
	if _, err := s.appointments.DeleteProcedureLinks(ctx, id); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, id)
}

// -- Reads --

// Get returns the appointment with its procedures if viewer may see it.
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID, viewer Viewer) (*Appointment, error) {
	a, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanSee(a) {
		return nil, apperr.Forbidden("appointment belongs to another collaborator")
	}
	if err := s.hydrate(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns a page of appointments. Non-admin viewers are restricted to
// their own appointments whatever the filter says.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, viewer Viewer, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("invalid status %q", f.Status)
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return nil, 0, apperr.Validation("end must not be before start")
	}
	if !viewer.Admin {
		self := viewer.UserID
		f.CollaboratorID = &self
	}
	items, total, err := s.appointments.List(ctx, companyID, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrate(ctx, items...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListInRange returns the appointments dated in [start, end] without their
// procedures.
func (s *Service) ListInRange(ctx context.Context, companyID uuid.UUID, start, end time.Time, collaboratorID *uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListInRange(ctx, companyID, start, end, collaboratorID)
}

// -- Helpers --

func (s *Service) load(ctx context.Context, companyID, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CompanyID != companyID {
		return nil, apperr.Forbidden("appointment belongs to another company")
	}
	return a, nil
}

func (s *Service) hydrate(ctx context.Context, appts ...*Appointment) error {
	if len(appts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(appts))
	for i, a := range appts {
		ids[i] = a.ID
	}
	procs, err := s.appointments.ProceduresFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, a := range appts {
		a.Procedures = procs[a.ID]
		if a.Procedures == nil {
			a.Procedures = []*procedure.Procedure{}
		}
	}
	return nil
}

// currentProcedureIDs returns the linked procedure ids, or the legacy
// single procedure for appointments that have no links.
func (s *Service) currentProcedureIDs(ctx context.Context, a *Appointment) ([]uuid.UUID, error) {
	links, err := s.appointments.GetProcedureLinks(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ProcedureID)
	}
	if len(ids) == 0 && a.ProcedureID != nil {
		ids = append(ids, *a.ProcedureID)
	}
	return ids, nil
}

func (s *Service) linkProcedures(ctx context.Context, appointmentID uuid.UUID, res *procedure.Resolution) error {
	for i, p := range res.Procedures {
		link := &ProcedureLink{AppointmentID: appointmentID, ProcedureID: p.ID, Position: i}
		if err := s.appointments.AddProcedureLink(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkClient(ctx context.Context, companyID, id uuid.UUID) (*client.Client, error) {
	cl, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && cl.CompanyID != companyID) {
		return nil, apperr.InvalidReference("client %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func (s *Service) checkCollaborator(ctx context.Context, companyID, id uuid.UUID) (*company.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && u.CompanyID != companyID) {
		return nil, apperr.InvalidReference("collaborator %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func incomeRecord(a *Appointment, clientName string, date time.Time) *financial.Record {
	apptID := a.ID
	return &financial.Record{
		CompanyID:     a.CompanyID,
		Type:          financial.TypeIncome,
		Category:      financial.CategoryAppointment,
		Description:   "Appointment - " + clientName,
		Value:         a.Value,
		Date:          date,
		AppointmentID: &apptID,
	}
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	n := strings.TrimSpace(*notes)
	if n == "" {
		return nil
	}
	return &n
}
