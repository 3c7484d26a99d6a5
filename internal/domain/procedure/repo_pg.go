package procedure

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

type procedureRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &procedureRepoPG{pool: pool} }

func (r *procedureRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

// price is read as text so it never passes through a float.
const procedureCols = `id, company_id, name, price::text, created_at, updated_at`

func (r *procedureRepoPG) scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("procedure")
		}
		return nil, err
	}
	return &p, nil
}

func (r *procedureRepoPG) Create(ctx context.Context, p *Procedure) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO procedures (id, company_id, name, price)
		VALUES ($1,$2,$3,$4::numeric)
		RETURNING created_at, updated_at`,
		p.ID, p.CompanyID, p.Name, p.Price.String()).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *procedureRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return r.scanProcedure(r.conn(ctx).QueryRow(ctx, `SELECT `+procedureCols+` FROM procedures WHERE id = $1`, id))
}

func (r *procedureRepoPG) Update(ctx context.Context, p *Procedure) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE procedures SET name=$2, price=$3::numeric, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Price.String()).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("procedure")
	}
	return err
}

func (r *procedureRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("procedure is used by appointments")
	}
	if err != nil {
		return fmt.Errorf("delete procedure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("procedure")
	}
	return nil
}

func (r *procedureRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM procedures WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+procedureCols+` FROM procedures WHERE company_id = $1 ORDER BY name, created_at LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Procedure
	for rows.Next() {
		p, err := r.scanProcedure(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *procedureRepoPG) CountAppointmentLinks(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM appointment_procedures WHERE procedure_id = $1)
		     + (SELECT COUNT(*) FROM appointments WHERE procedure_id = $1)`, id).Scan(&n)
	return n, err
}
