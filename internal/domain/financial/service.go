package financial

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/pkg/money"
)

// Bounds used when a summary range is left open.
var (
	openStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	openEnd   = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

type Service struct {
	records RecordRepository
	goals   GoalRepository
	now     func() time.Time
}

func NewService(records RecordRepository, goals GoalRepository) *Service {
	return &Service{records: records, goals: goals, now: time.Now}
}

// -- Records --

func (s *Service) CreateRecord(ctx context.Context, companyID uuid.UUID, r *Record) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	r.CompanyID = companyID
	r.AppointmentID = nil
	return s.records.Create(ctx, r)
}

func (s *Service) GetRecord(ctx context.Context, companyID, id uuid.UUID) (*Record, error) {
	r, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CompanyID != companyID {
		return nil, apperr.Forbidden("financial record belongs to another company")
	}
	return r, nil
}

func (s *Service) ListRecords(ctx context.Context, companyID uuid.UUID, f RecordFilter, limit, offset int) ([]*Record, int, error) {
	if err := validateFilter(f); err != nil {
		return nil, 0, err
	}
	return s.records.List(ctx, companyID, f, limit, offset)
}

// UpdateRecord replaces the editable fields of a manual record.
func (s *Service) UpdateRecord(ctx context.Context, companyID uuid.UUID, r *Record) error {
	existing, err := s.GetRecord(ctx, companyID, r.ID)
	if err != nil {
		return err
	}
	if existing.IsAppointmentOwned() {
		return apperr.Validation("appointment records are managed through their appointment")
	}
	if err := validateRecord(r); err != nil {
		return err
	}
	r.CompanyID = existing.CompanyID
	r.AppointmentID = existing.AppointmentID
	r.CreatedAt = existing.CreatedAt
	return s.records.Update(ctx, r)
}

func (s *Service) DeleteRecord(ctx context.Context, companyID, id uuid.UUID) error {
	existing, err := s.GetRecord(ctx, companyID, id)
	if err != nil {
		return err
	}
	if existing.IsAppointmentOwned() {
		return apperr.Validation("appointment records are managed through their appointment")
	}
	return s.records.Delete(ctx, id)
}

// Summary returns exact income and expense totals for records dated in
// [start, end]. Nil bounds leave that side open.
func (s *Service) Summary(ctx context.Context, companyID uuid.UUID, start, end *time.Time) (*Summary, error) {
	from, to := openStart, openEnd
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		return nil, apperr.Validation("end must not be before start")
	}

	income, err := s.records.SumByType(ctx, companyID, TypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	expense, err := s.records.SumByType(ctx, companyID, TypeExpense, from, to)
	if err != nil {
		return nil, err
	}
	return &Summary{Income: income, Expense: expense, Balance: income - expense}, nil
}

// IncomeBetween totals income records dated in [start, end].
func (s *Service) IncomeBetween(ctx context.Context, companyID uuid.UUID, start, end time.Time) (money.Amount, error) {
	return s.records.SumByType(ctx, companyID, TypeIncome, start, end)
}

func validateRecord(r *Record) error {
	if !validTypes[r.Type] {
		return apperr.Validation("type must be income or expense")
	}
	if r.Category == CategoryAppointment {
		return apperr.Validation("appointment records are created by appointments")
	}
	if !validCategories[r.Category] {
		return apperr.Validation("category must be fixed_cost or variable_cost")
	}
	if r.Value.IsNegative() {
		return apperr.Validation("value cannot be negative")
	}
	if !r.Value.InRange() {
		return apperr.Validation("value exceeds the maximum amount %s", money.Max)
	}
	if r.Date.IsZero() {
		return apperr.Validation("date is required")
	}
	r.Description = strings.TrimSpace(r.Description)
	return nil
}

func validateFilter(f RecordFilter) error {
	if f.Type != "" && !validTypes[f.Type] {
		return apperr.Validation("unknown record type %q", f.Type)
	}
	if f.Category != "" && !validCategories[f.Category] {
		return apperr.Validation("unknown record category %q", f.Category)
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return apperr.Validation("end must not be before start")
	}
	return nil
}

// -- Goals --

func (s *Service) CreateGoal(ctx context.Context, companyID uuid.UUID, g *Goal) error {
	if err := validateGoal(g); err != nil {
		return err
	}
	g.CompanyID = companyID
	return s.goals.Create(ctx, g)
}

func (s *Service) GetGoal(ctx context.Context, companyID, id uuid.UUID) (*Goal, error) {
	g, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.CompanyID != companyID {
		return nil, apperr.Forbidden("financial goal belongs to another company")
	}
	return g, nil
}

func (s *Service) ListGoals(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Goal, int, error) {
	return s.goals.ListByCompany(ctx, companyID, limit, offset)
}

func (s *Service) UpdateGoal(ctx context.Context, companyID uuid.UUID, g *Goal) error {
	existing, err := s.GetGoal(ctx, companyID, g.ID)
	if err != nil {
		return err
	}
	if err := validateGoal(g); err != nil {
		return err
	}
	g.CompanyID = existing.CompanyID
	g.CreatedAt = existing.CreatedAt
	return s.goals.Update(ctx, g)
}

func (s *Service) DeleteGoal(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.GetGoal(ctx, companyID, id); err != nil {
		return err
	}
	return s.goals.Delete(ctx, id)
}

// Progress compares the income dated inside the goal window with its target.
func (s *Service) Progress(ctx context.Context, companyID, id uuid.UUID) (*GoalProgress, error) {
	g, err := s.GetGoal(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	achieved, err := s.records.SumByType(ctx, companyID, TypeIncome, g.StartDate, g.EndDate)
	if err != nil {
		return nil, err
	}
	remaining := g.Target - achieved
	if remaining < 0 {
		remaining = money.Zero
	}
	return &GoalProgress{
		GoalID:    g.ID,
		Target:    g.Target,
		Achieved:  achieved,
		Remaining: remaining,
		Percent:   money.Percent(achieved, g.Target),
	}, nil
}

func validateGoal(g *Goal) error {
	if g.Target.IsNegative() {
		return apperr.Validation("target cannot be negative")
	}
	if !g.Target.InRange() {
		return apperr.Validation("target exceeds the maximum amount %s", money.Max)
	}
	if !validPeriods[g.Period] {
		return apperr.Validation("period must be monthly, quarterly or yearly")
	}
	if g.StartDate.IsZero() || g.EndDate.IsZero() {
		return apperr.Validation("startDate and endDate are required")
	}
	if g.EndDate.Before(g.StartDate) {
		return apperr.Validation("endDate must not be before startDate")
	}
	return nil
}
