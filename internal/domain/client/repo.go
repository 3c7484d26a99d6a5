package client

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByCompany filters by a case-insensitive name or phone fragment
	// when search is non-empty.
	ListByCompany(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*Client, int, error)
}
