package procedure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/pkg/money"
)

type Service struct {
	procedures Repository
}

func NewService(procedures Repository) *Service {
	return &Service{procedures: procedures}
}

// Resolve loads each id in order, checks it belongs to companyID and sums
// the prices in cents. Repeated ids are priced once per occurrence.
func (s *Service) Resolve(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (*Resolution, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("at least one procedure is required")
	}

	res := &Resolution{Procedures: make([]*Procedure, 0, len(ids))}
	amounts := make([]money.Amount, 0, len(ids))
	for _, id := range ids {
		p, err := s.procedures.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.InvalidReference("procedure %s does not exist", id)
			}
			return nil, fmt.Errorf("resolve procedure %s: %w", id, err)
		}
		if p.CompanyID != companyID {
			return nil, apperr.InvalidReference("procedure %s does not exist", id)
		}
		res.Procedures = append(res.Procedures, p)
		amounts = append(amounts, p.Price)
	}
	res.Total = money.Sum(amounts...)
	if !res.Total.InRange() {
		return nil, apperr.Validation("total of %s exceeds the maximum amount %s", res.Total, money.Max)
	}
	return res, nil
}

// -- CRUD --

func (s *Service) Create(ctx context.Context, companyID uuid.UUID, p *Procedure) error {
	if err := validate(p); err != nil {
		return err
	}
	p.CompanyID = companyID
	return s.procedures.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*Procedure, error) {
	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, apperr.Forbidden("procedure belongs to another company")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	return s.procedures.ListByCompany(ctx, companyID, limit, offset)
}

// Update changes name and price. Existing appointments keep the value they
// were priced at.
func (s *Service) Update(ctx context.Context, companyID uuid.UUID, p *Procedure) error {
	existing, err := s.Get(ctx, companyID, p.ID)
	if err != nil {
		return err
	}
	if err := validate(p); err != nil {
		return err
	}
	p.CompanyID = existing.CompanyID
	p.CreatedAt = existing.CreatedAt
	return s.procedures.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	n, err := s.procedures.CountAppointmentLinks(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("procedure is used by %d appointment(s)", n)
	}
	return s.procedures.Delete(ctx, id)
}

func validate(p *Procedure) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Validation("name is required")
	}
	if p.Price.IsNegative() {
		return apperr.Validation("price cannot be negative")
	}
	if !p.Price.InRange() {
		return apperr.Validation("price exceeds the maximum amount %s", money.Max)
	}
	return nil
}
