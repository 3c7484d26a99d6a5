package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

// AppointmentRemover deletes every appointment of a client through the
// appointment workflow, so their financial records and procedure links go
// with them.
type AppointmentRemover interface {
	DeleteByClient(ctx context.Context, companyID, clientID uuid.UUID) (int, error)
}

type Service struct {
	clients      Repository
	appointments AppointmentRemover
	tx           db.Transactor
}

func NewService(clients Repository, appointments AppointmentRemover, tx db.Transactor) *Service {
	return &Service{clients: clients, appointments: appointments, tx: tx}
}

func (s *Service) Create(ctx context.Context, companyID uuid.UUID, c *Client) error {
	if err := normalize(c); err != nil {
		return err
	}
	c.CompanyID = companyID
	return s.clients.Create(ctx, c)
}

// Get returns the client if it belongs to companyID.
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CompanyID != companyID {
		return nil, apperr.Forbidden("client belongs to another company")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*Client, int, error) {
	return s.clients.ListByCompany(ctx, companyID, strings.TrimSpace(search), limit, offset)
}

func (s *Service) Update(ctx context.Context, companyID uuid.UUID, c *Client) error {
	existing, err := s.Get(ctx, companyID, c.ID)
	if err != nil {
		return err
	}
	if err := normalize(c); err != nil {
		return err
	}
	c.CompanyID = existing.CompanyID
	c.CreatedAt = existing.CreatedAt
	return s.clients.Update(ctx, c)
}

// Delete removes the client and, in the same transaction, all of its
// appointments.
func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.appointments.DeleteByClient(ctx, companyID, id); err != nil {
			return err
		}
		return s.clients.Delete(ctx, id)
	})
}

func normalize(c *Client) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Validation("name is required")
	}
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Notes != nil {
		notes := strings.TrimSpace(*c.Notes)
		if notes == "" {
			c.Notes = nil
		} else {
			c.Notes = &notes
		}
	}
	return nil
}
