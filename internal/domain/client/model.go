package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of a company.
type Client struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
