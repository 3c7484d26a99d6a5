package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/internal/domain/scheduling"
	"github.com/beautydesk/beautydesk/pkg/money"
)

type AppointmentReader interface {
	ListInRange(ctx context.Context, companyID uuid.UUID, start, end time.Time, collaboratorID *uuid.UUID) ([]*scheduling.Appointment, error)
}

type IncomeReader interface {
	IncomeBetween(ctx context.Context, companyID uuid.UUID, start, end time.Time) (money.Amount, error)
}

// Stats summarises a company's activity over one calendar window.
type Stats struct {
	TotalAppointments  int          `json:"totalAppointments"`
	ClientsServed      int          `json:"clientsServed"`
	OccupationRate     int          `json:"occupationRate"`
	Revenue            money.Amount `json:"revenue"`
	WeeklyAppointments int          `json:"weeklyAppointments"`
	TimeFilter         string       `json:"timeFilter"`
	Start              time.Time    `json:"start"`
	End                time.Time    `json:"end"`
}

type Service struct {
	appointments AppointmentReader
	income       IncomeReader
	now          func() time.Time
}

func NewService(appointments AppointmentReader, income IncomeReader) *Service {
	return &Service{appointments: appointments, income: income, now: time.Now}
}

// Stats computes the dashboard for the window named by filter. Non-admins
// only count their own appointments and get zero revenue.
func (s *Service) Stats(ctx context.Context, companyID uuid.UUID, filter string, viewer scheduling.Viewer) (*Stats, error) {
	now := s.now()
	w, err := WindowFor(filter, now)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		filter = FilterMonth
	}

	var only *uuid.UUID
	if !viewer.Admin {
		self := viewer.UserID
		only = &self
	}

	appts, err := s.appointments.ListInRange(ctx, companyID, w.Start, w.End, only)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, a := range appts {
		if a.Status == scheduling.StatusCompleted {
			completed++
		}
	}

	upcoming, err := s.appointments.ListInRange(ctx, companyID, now, now.AddDate(0, 0, 7), only)
	if err != nil {
		return nil, err
	}

	revenue := money.Zero
	if viewer.Admin {
		if revenue, err = s.income.IncomeBetween(ctx, companyID, w.Start, w.End); err != nil {
			return nil, err
		}
	}

	return &Stats{
		TotalAppointments:  len(appts),
		ClientsServed:      completed,
		OccupationRate:     occupationRate(completed, len(appts)),
		Revenue:            revenue,
		WeeklyAppointments: len(upcoming),
		TimeFilter:         filter,
		Start:              w.Start,
		End:                w.End,
	}, nil
}

// occupationRate is round(completed / max(total, 1) * 100).
func occupationRate(completed, total int) int {
	if total < 1 {
		total = 1
	}
	return (completed*200 + total) / (total * 2)
}
