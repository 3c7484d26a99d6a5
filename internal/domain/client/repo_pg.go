package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

type clientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &clientRepoPG{pool: pool} }

func (r *clientRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const clientCols = `id, company_id, name, phone, notes, created_at, updated_at`

func (r *clientRepoPG) scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("client")
		}
		return nil, err
	}
	return &c, nil
}

func (r *clientRepoPG) Create(ctx context.Context, c *Client) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clients (id, company_id, name, phone, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		c.ID, c.CompanyID, c.Name, c.Phone, c.Notes).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *clientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	return r.scanClient(r.conn(ctx).QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id = $1`, id))
}

func (r *clientRepoPG) Update(ctx context.Context, c *Client) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE clients SET name=$2, phone=$3, notes=$4, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Phone, c.Notes).Scan(&c.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("client")
	}
	return err
}

func (r *clientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("client")
	}
	return nil
}

func (r *clientRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*Client, int, error) {
	query := `SELECT ` + clientCols + ` FROM clients WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE company_id = $1`
	args := []interface{}{companyID}
	idx := 2

	if search != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR phone ILIKE $%d)`, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name, created_at LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Client
	for rows.Next() {
		c, err := r.scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
