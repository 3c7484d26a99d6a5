package financial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/pkg/money"
)

// =========== Record Repository ===========

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository { return &recordRepoPG{pool: pool} }

func (r *recordRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const recordCols = `id, company_id, type, category, description, value::text, date, appointment_id, created_at, updated_at`

func (r *recordRepoPG) scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.Type, &rec.Category, &rec.Description,
		&rec.Value, &rec.Date, &rec.AppointmentID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("financial record")
		}
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financial_records (id, company_id, type, category, description, value, date, appointment_id)
		VALUES ($1,$2,$3,$4,$5,$6::numeric,$7,$8)
		RETURNING created_at, updated_at`,
		rec.ID, rec.CompanyID, rec.Type, rec.Category, rec.Description, rec.Value.String(), rec.Date, rec.AppointmentID,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("appointment already has a financial record")
	}
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM financial_records WHERE id = $1`, id))
}

func (r *recordRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM financial_records WHERE appointment_id = $1`, appointmentID))
}

func (r *recordRepoPG) Update(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE financial_records SET type=$2, category=$3, description=$4, value=$5::numeric, date=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID, rec.Type, rec.Category, rec.Description, rec.Value.String(), rec.Date,
	).Scan(&rec.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("financial record")
	}
	return err
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM financial_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete financial record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("financial record")
	}
	return nil
}

func (r *recordRepoPG) DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM financial_records WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return 0, fmt.Errorf("delete appointment financial record: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func recordWhere(companyID uuid.UUID, f RecordFilter) (string, []interface{}) {
	where := ` WHERE company_id = $1`
	args := []interface{}{companyID}
	idx := 2

	if f.Start != nil {
		where += fmt.Sprintf(` AND date >= $%d`, idx)
		args = append(args, *f.Start)
		idx++
	}
	if f.End != nil {
		where += fmt.Sprintf(` AND date <= $%d`, idx)
		args = append(args, *f.End)
		idx++
	}
	if f.Type != "" {
		where += fmt.Sprintf(` AND type = $%d`, idx)
		args = append(args, f.Type)
		idx++
	}
	if f.Category != "" {
		where += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, f.Category)
	}
	return where, args
}

func (r *recordRepoPG) List(ctx context.Context, companyID uuid.UUID, f RecordFilter, limit, offset int) ([]*Record, int, error) {
	where, args := recordWhere(companyID, f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM financial_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordCols + ` FROM financial_records` + where +
		fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items, err := r.query(ctx, query, args...)
	return items, total, err
}

func (r *recordRepoPG) ListAll(ctx context.Context, companyID uuid.UUID, f RecordFilter) ([]*Record, error) {
	where, args := recordWhere(companyID, f)
	return r.query(ctx, `SELECT `+recordCols+` FROM financial_records`+where+` ORDER BY date, created_at`, args...)
}

func (r *recordRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *recordRepoPG) SumByType(ctx context.Context, companyID uuid.UUID, recordType string, start, end time.Time) (money.Amount, error) {
	var total money.Amount
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(value), 0)::numeric(14,2)::text FROM financial_records
		WHERE company_id = $1 AND type = $2 AND date >= $3 AND date <= $4`,
		companyID, recordType, start, end).Scan(&total)
	return total, err
}

// =========== Goal Repository ===========

type goalRepoPG struct{ pool *pgxpool.Pool }

func NewGoalRepoPG(pool *pgxpool.Pool) GoalRepository { return &goalRepoPG{pool: pool} }

func (r *goalRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const goalCols = `id, company_id, target::text, period, start_date, end_date, created_at, updated_at`

func (r *goalRepoPG) scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.CompanyID, &g.Target, &g.Period, &g.StartDate, &g.EndDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("financial goal")
		}
		return nil, err
	}
	return &g, nil
}

func (r *goalRepoPG) Create(ctx context.Context, g *Goal) error {
	g.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financial_goals (id, company_id, target, period, start_date, end_date)
		VALUES ($1,$2,$3::numeric,$4,$5,$6)
		RETURNING created_at, updated_at`,
		g.ID, g.CompanyID, g.Target.String(), g.Period, g.StartDate, g.EndDate,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *goalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Goal, error) {
	return r.scanGoal(r.conn(ctx).QueryRow(ctx, `SELECT `+goalCols+` FROM financial_goals WHERE id = $1`, id))
}

func (r *goalRepoPG) Update(ctx context.Context, g *Goal) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE financial_goals SET target=$2::numeric, period=$3, start_date=$4, end_date=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		g.ID, g.Target.String(), g.Period, g.StartDate, g.EndDate,
	).Scan(&g.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("financial goal")
	}
	return err
}

func (r *goalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM financial_goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete financial goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("financial goal")
	}
	return nil
}

func (r *goalRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Goal, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM financial_goals WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+goalCols+` FROM financial_goals WHERE company_id = $1 ORDER BY start_date DESC LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Goal
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}
