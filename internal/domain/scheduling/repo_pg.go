package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautydesk/beautydesk/internal/domain/procedure"
	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const apptCols = `a.id, a.company_id, a.client_id, a.collaborator_id, a.procedure_id, a.date, a.status,
	a.value::text, a.notes, a.created_at, a.updated_at, c.name, u.name`

const apptFrom = ` FROM appointments a
	JOIN clients c ON c.id = a.client_id
	JOIN users u ON u.id = a.collaborator_id`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.CompanyID, &a.ClientID, &a.CollaboratorID, &a.ProcedureID, &a.Date, &a.Status,
		&a.Value, &a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.ClientName, &a.CollaboratorName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("appointment")
		}
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, company_id, client_id, collaborator_id, procedure_id, date, status, value, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.CompanyID, a.ClientID, a.CollaboratorID, a.ProcedureID, a.Date, a.Status, a.Value.String(), a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.InvalidReference("appointment references a missing client, collaborator or procedure")
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
}

func (r *appointmentRepoPG) LockStatus(ctx context.Context, id uuid.UUID) (string, error) {
	var status string
	err := r.conn(ctx).QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if db.IsNoRows(err) {
		return "", apperr.NotFound("appointment")
	}
	return status, err
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments SET client_id=$2, collaborator_id=$3, procedure_id=$4, date=$5, status=$6,
			value=$7::numeric, notes=$8, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.ClientID, a.CollaboratorID, a.ProcedureID, a.Date, a.Status, a.Value.String(), a.Notes,
	).Scan(&a.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("appointment")
	}
	if db.IsForeignKeyViolation(err) {
		return apperr.InvalidReference("appointment references a missing client, collaborator or procedure")
	}
	return err
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment")
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, companyID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE a.company_id = $1`
	args := []interface{}{companyID}
	idx := 2

	if f.Start != nil {
		where += fmt.Sprintf(` AND a.date >= $%d`, idx)
		args = append(args, *f.Start)
		idx++
	}
	if f.End != nil {
		where += fmt.Sprintf(` AND a.date <= $%d`, idx)
		args = append(args, *f.End)
		idx++
	}
	if f.CollaboratorID != nil {
		where += fmt.Sprintf(` AND a.collaborator_id = $%d`, idx)
		args = append(args, *f.CollaboratorID)
		idx++
	}
	if f.ClientID != nil {
		where += fmt.Sprintf(` AND a.client_id = $%d`, idx)
		args = append(args, *f.ClientID)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, f.Status)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + apptFrom + where +
		fmt.Sprintf(` ORDER BY a.date, a.created_at LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	items, err := r.query(ctx, query, args...)
	return items, total, err
}

func (r *appointmentRepoPG) ListInRange(ctx context.Context, companyID uuid.UUID, start, end time.Time, collaboratorID *uuid.UUID) ([]*Appointment, error) {
	query := `SELECT ` + apptCols + apptFrom + ` WHERE a.company_id = $1 AND a.date >= $2 AND a.date <= $3`
	args := []interface{}{companyID, start, end}
	if collaboratorID != nil {
		query += ` AND a.collaborator_id = $4`
		args = append(args, *collaboratorID)
	}
	return r.query(ctx, query+` ORDER BY a.date`, args...)
}

func (r *appointmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListIDsByClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id FROM appointments WHERE client_id = $1 ORDER BY date`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// -- Procedure links --

func (r *appointmentRepoPG) AddProcedureLink(ctx context.Context, link *ProcedureLink) error {
	link.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_procedures (id, appointment_id, procedure_id, position)
		VALUES ($1,$2,$3,$4)`,
		link.ID, link.AppointmentID, link.ProcedureID, link.Position)
	if db.IsForeignKeyViolation(err) {
		return apperr.InvalidReference("procedure %s does not exist", link.ProcedureID)
	}
	return err
}

func (r *appointmentRepoPG) GetProcedureLinks(ctx context.Context, appointmentID uuid.UUID) ([]*ProcedureLink, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, procedure_id, position FROM appointment_procedures
		WHERE appointment_id = $1 ORDER BY position`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var links []*ProcedureLink
	for rows.Next() {
		var l ProcedureLink
		if err := rows.Scan(&l.ID, &l.AppointmentID, &l.ProcedureID, &l.Position); err != nil {
			return nil, err
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

func (r *appointmentRepoPG) DeleteProcedureLinks(ctx context.Context, appointmentID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_procedures WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return 0, fmt.Errorf("delete procedure links: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ProceduresFor reads the junction rows. Appointments written before the
// junction existed fall back to their single legacy procedure.
func (r *appointmentRepoPG) ProceduresFor(ctx context.Context, appointmentIDs []uuid.UUID) (map[uuid.UUID][]*procedure.Procedure, error) {
	out := make(map[uuid.UUID][]*procedure.Procedure, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ap.appointment_id, ap.position, p.id, p.company_id, p.name, p.price::text, p.created_at, p.updated_at
		FROM appointment_procedures ap
		JOIN procedures p ON p.id = ap.procedure_id
		WHERE ap.appointment_id = ANY($1)
		UNION ALL
		SELECT a.id, 0, p.id, p.company_id, p.name, p.price::text, p.created_at, p.updated_at
		FROM appointments a
		JOIN procedures p ON p.id = a.procedure_id
		WHERE a.id = ANY($1)
		  AND NOT EXISTS (SELECT 1 FROM appointment_procedures x WHERE x.appointment_id = a.id)
		ORDER BY 1, 2`, appointmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var apptID uuid.UUID
		var position int
		var p procedure.Procedure
		if err := rows.Scan(&apptID, &position, &p.ID, &p.CompanyID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[apptID] = append(out[apptID], &p)
	}
	return out, rows.Err()
}
