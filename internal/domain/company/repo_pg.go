package company

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

// =========== Company Repository ===========

type companyRepoPG struct{ pool *pgxpool.Pool }

func NewCompanyRepoPG(pool *pgxpool.Pool) CompanyRepository { return &companyRepoPG{pool: pool} }

func (r *companyRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const companyCols = `id, name, invite_code, created_at, updated_at`

func (r *companyRepoPG) scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	if err := row.Scan(&c.ID, &c.Name, &c.InviteCode, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("company")
		}
		return nil, err
	}
	return &c, nil
}

func (r *companyRepoPG) Create(ctx context.Context, c *Company) error {
	c.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO companies (id, name, invite_code)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.InviteCode).Scan(&c.CreatedAt, &c.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("invite code already in use")
	}
	return err
}

func (r *companyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return r.scanCompany(r.conn(ctx).QueryRow(ctx, `SELECT `+companyCols+` FROM companies WHERE id = $1`, id))
}

func (r *companyRepoPG) GetByInviteCode(ctx context.Context, code string) (*Company, error) {
	return r.scanCompany(r.conn(ctx).QueryRow(ctx, `SELECT `+companyCols+` FROM companies WHERE invite_code = $1`, code))
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, company_id, name, email, password_hash, phone, role, job_function, created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Phone, &u.Role, &u.Function, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (id, company_id, name, email, password_hash, phone, role, job_function)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		u.ID, u.CompanyID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Role, u.Function,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("email already registered")
	}
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET name=$2, phone=$3, role=$4, job_function=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Name, u.Phone, u.Role, u.Function).Scan(&u.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("user")
	}
	return err
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("user has appointments and cannot be deleted")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *userRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users WHERE company_id = $1 ORDER BY name, created_at LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}
