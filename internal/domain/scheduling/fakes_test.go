package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/domain/client"
	"github.com/beautydesk/beautydesk/internal/domain/company"
	"github.com/beautydesk/beautydesk/internal/domain/financial"
	"github.com/beautydesk/beautydesk/internal/domain/procedure"
	"github.com/beautydesk/beautydesk/internal/platform/apperr"
)

var errInjected = errors.New("injected failure")

// memStore backs every fake repository. Values are stored as copies so a
// snapshot of the maps is enough to roll back.
type memStore struct {
	appts   map[uuid.UUID]*Appointment
	links   map[uuid.UUID]*ProcedureLink
	records map[uuid.UUID]*financial.Record
	procs   map[uuid.UUID]*procedure.Procedure
	clients map[uuid.UUID]*client.Client
	users   map[uuid.UUID]*company.User

	ops    []string
	failOn string
	// onLock runs when a status lock is taken, standing in for a
	// transaction that committed first.
	onLock func()
}

func newMemStore() *memStore {
	return &memStore{
		appts:   make(map[uuid.UUID]*Appointment),
		links:   make(map[uuid.UUID]*ProcedureLink),
		records: make(map[uuid.UUID]*financial.Record),
		procs:   make(map[uuid.UUID]*procedure.Procedure),
		clients: make(map[uuid.UUID]*client.Client),
		users:   make(map[uuid.UUID]*company.User),
	}
}

func (m *memStore) op(name string) error {
	m.ops = append(m.ops, name)
	if m.failOn == name {
		return errInjected
	}
	return nil
}

// -- Transactor --

type memTx struct{ store *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	appts := copyMap(t.store.appts)
	links := copyMap(t.store.links)
	records := copyMap(t.store.records)
	if err := fn(ctx); err != nil {
		t.store.appts, t.store.links, t.store.records = appts, links, records
		return err
	}
	return nil
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// -- Appointment repository --

type memAppointments struct{ store *memStore }

func (r memAppointments) Create(_ context.Context, a *Appointment) error {
	if err := r.store.op("appointment.create"); err != nil {
		return err
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	cp.Procedures = nil
	r.store.appts[a.ID] = &cp
	return nil
}

func (r memAppointments) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.store.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	return r.joined(a), nil
}

func (r memAppointments) joined(a *Appointment) *Appointment {
	cp := *a
	if c, ok := r.store.clients[a.ClientID]; ok {
		cp.ClientName = c.Name
	}
	if u, ok := r.store.users[a.CollaboratorID]; ok {
		cp.CollaboratorName = u.Name
	}
	return &cp
}

func (r memAppointments) LockStatus(_ context.Context, id uuid.UUID) (string, error) {
	if err := r.store.op("appointment.lock"); err != nil {
		return "", err
	}
	if r.store.onLock != nil {
		r.store.onLock()
	}
	a, ok := r.store.appts[id]
	if !ok {
		return "", apperr.NotFound("appointment")
	}
	return a.Status, nil
}

func (r memAppointments) Update(_ context.Context, a *Appointment) error {
	if err := r.store.op("appointment.update"); err != nil {
		return err
	}
	if _, ok := r.store.appts[a.ID]; !ok {
		return apperr.NotFound("appointment")
	}
	a.UpdatedAt = time.Now()
	cp := *a
	cp.Procedures = nil
	r.store.appts[a.ID] = &cp
	return nil
}

func (r memAppointments) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.store.op("appointment.delete"); err != nil {
		return err
	}
	if _, ok := r.store.appts[id]; !ok {
		return apperr.NotFound("appointment")
	}
	delete(r.store.appts, id)
	return nil
}

func (r memAppointments) matching(companyID uuid.UUID, f ListFilter) []*Appointment {
	var result []*Appointment
	for _, a := range r.store.appts {
		switch {
		case a.CompanyID != companyID,
			f.Start != nil && a.Date.Before(*f.Start),
			f.End != nil && a.Date.After(*f.End),
			f.CollaboratorID != nil && a.CollaboratorID != *f.CollaboratorID,
			f.ClientID != nil && a.ClientID != *f.ClientID,
			f.Status != "" && a.Status != f.Status:
			continue
		}
		result = append(result, r.joined(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

func (r memAppointments) List(_ context.Context, companyID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	result := r.matching(companyID, f)
	return result, len(result), nil
}

func (r memAppointments) ListInRange(_ context.Context, companyID uuid.UUID, start, end time.Time, collaboratorID *uuid.UUID) ([]*Appointment, error) {
	return r.matching(companyID, ListFilter{Start: &start, End: &end, CollaboratorID: collaboratorID}), nil
}

func (r memAppointments) ListIDsByClient(_ context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, a := range r.store.appts {
		if a.ClientID == clientID {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r memAppointments) AddProcedureLink(_ context.Context, link *ProcedureLink) error {
	if err := r.store.op("links.add"); err != nil {
		return err
	}
	link.ID = uuid.New()
	cp := *link
	r.store.links[link.ID] = &cp
	return nil
}

func (r memAppointments) GetProcedureLinks(_ context.Context, appointmentID uuid.UUID) ([]*ProcedureLink, error) {
	var links []*ProcedureLink
	for _, l := range r.store.links {
		if l.AppointmentID == appointmentID {
			cp := *l
			links = append(links, &cp)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Position < links[j].Position })
	return links, nil
}

func (r memAppointments) DeleteProcedureLinks(_ context.Context, appointmentID uuid.UUID) (int, error) {
	if err := r.store.op("links.delete"); err != nil {
		return 0, err
	}
	n := 0
	for id, l := range r.store.links {
		if l.AppointmentID == appointmentID {
			delete(r.store.links, id)
			n++
		}
	}
	return n, nil
}

func (r memAppointments) ProceduresFor(ctx context.Context, appointmentIDs []uuid.UUID) (map[uuid.UUID][]*procedure.Procedure, error) {
	out := make(map[uuid.UUID][]*procedure.Procedure)
	for _, id := range appointmentIDs {
		links, _ := r.GetProcedureLinks(ctx, id)
		for _, l := range links {
			if p, ok := r.store.procs[l.ProcedureID]; ok {
				out[id] = append(out[id], p)
			}
		}
		if len(links) == 0 {
			if a, ok := r.store.appts[id]; ok && a.ProcedureID != nil {
				if p, ok := r.store.procs[*a.ProcedureID]; ok {
					out[id] = []*procedure.Procedure{p}
				}
			}
		}
	}
	return out, nil
}

// -- Ledger --

type memLedger struct{ store *memStore }

func (l memLedger) Create(_ context.Context, rec *financial.Record) error {
	if err := l.store.op("ledger.create"); err != nil {
		return err
	}
	rec.ID = uuid.New()
	cp := *rec
	l.store.records[rec.ID] = &cp
	return nil
}

func (l memLedger) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*financial.Record, error) {
	for _, rec := range l.store.records {
		if rec.AppointmentID != nil && *rec.AppointmentID == appointmentID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("financial record")
}

func (l memLedger) Update(_ context.Context, rec *financial.Record) error {
	if err := l.store.op("ledger.update"); err != nil {
		return err
	}
	cp := *rec
	l.store.records[rec.ID] = &cp
	return nil
}

func (l memLedger) DeleteByAppointment(_ context.Context, appointmentID uuid.UUID) (int, error) {
	if err := l.store.op("ledger.delete"); err != nil {
		return 0, err
	}
	n := 0
	for id, rec := range l.store.records {
		if rec.AppointmentID != nil && *rec.AppointmentID == appointmentID {
			delete(l.store.records, id)
			n++
		}
	}
	return n, nil
}

// recordsFor returns the ledger entries of an appointment.
func (m *memStore) recordsFor(appointmentID uuid.UUID) []*financial.Record {
	var out []*financial.Record
	for _, rec := range m.records {
		if rec.AppointmentID != nil && *rec.AppointmentID == appointmentID {
			out = append(out, rec)
		}
	}
	return out
}

func (m *memStore) linksFor(appointmentID uuid.UUID) []*ProcedureLink {
	links, _ := memAppointments{m}.GetProcedureLinks(context.Background(), appointmentID)
	return links
}

// -- Lookups --

type memClients struct{ store *memStore }

func (c memClients) GetByID(_ context.Context, id uuid.UUID) (*client.Client, error) {
	cl, ok := c.store.clients[id]
	if !ok {
		return nil, apperr.NotFound("client")
	}
	cp := *cl
	return &cp, nil
}

type memUsers struct{ store *memStore }

func (u memUsers) GetByID(_ context.Context, id uuid.UUID) (*company.User, error) {
	usr, ok := u.store.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *usr
	return &cp, nil
}

// memProcedures implements procedure.Repository so the real resolver
// prices appointments in tests.
type memProcedures struct{ store *memStore }

func (p memProcedures) Create(_ context.Context, pr *procedure.Procedure) error {
	pr.ID = uuid.New()
	cp := *pr
	p.store.procs[pr.ID] = &cp
	return nil
}

func (p memProcedures) GetByID(_ context.Context, id uuid.UUID) (*procedure.Procedure, error) {
	pr, ok := p.store.procs[id]
	if !ok {
		return nil, apperr.NotFound("procedure")
	}
	cp := *pr
	return &cp, nil
}

func (p memProcedures) Update(_ context.Context, pr *procedure.Procedure) error {
	cp := *pr
	p.store.procs[pr.ID] = &cp
	return nil
}

func (p memProcedures) Delete(_ context.Context, id uuid.UUID) error {
	delete(p.store.procs, id)
	return nil
}

func (p memProcedures) ListByCompany(_ context.Context, companyID uuid.UUID, limit, offset int) ([]*procedure.Procedure, int, error) {
	return nil, 0, nil
}

func (p memProcedures) CountAppointmentLinks(_ context.Context, id uuid.UUID) (int, error) {
	return 0, nil
}
