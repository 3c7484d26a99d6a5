package financial

import (
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/pkg/money"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	CategoryAppointment  = "appointment"
	CategoryFixedCost    = "fixed_cost"
	CategoryVariableCost = "variable_cost"

	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

var validTypes = map[string]bool{TypeIncome: true, TypeExpense: true}

var validCategories = map[string]bool{
	CategoryAppointment: true, CategoryFixedCost: true, CategoryVariableCost: true,
}

var validPeriods = map[string]bool{
	PeriodMonthly: true, PeriodQuarterly: true, PeriodYearly: true,
}

// Record is one income or expense entry. Records with category
// "appointment" are owned by the appointment they reference.
type Record struct {
	ID            uuid.UUID    `json:"id"`
	CompanyID     uuid.UUID    `json:"companyId"`
	Type          string       `json:"type"`
	Category      string       `json:"category"`
	Description   string       `json:"description"`
	Value         money.Amount `json:"value"`
	Date          time.Time    `json:"date"`
	AppointmentID *uuid.UUID   `json:"appointmentId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// IsAppointmentOwned reports whether the record is maintained by the
// appointment workflow rather than by hand.
func (r *Record) IsAppointmentOwned() bool {
	return r.Category == CategoryAppointment
}

// RecordFilter narrows record listings. Zero values match everything.
type RecordFilter struct {
	Start    *time.Time
	End      *time.Time
	Type     string
	Category string
}

// Summary holds exact income and expense totals for a date range.
type Summary struct {
	Income  money.Amount `json:"income"`
	Expense money.Amount `json:"expense"`
	Balance money.Amount `json:"balance"`
}

// Goal is a revenue target over a date window.
type Goal struct {
	ID        uuid.UUID    `json:"id"`
	CompanyID uuid.UUID    `json:"companyId"`
	Target    money.Amount `json:"target"`
	Period    string       `json:"period"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// GoalProgress compares the income achieved inside a goal's window with
// its target.
type GoalProgress struct {
	GoalID    uuid.UUID    `json:"goalId"`
	Target    money.Amount `json:"target"`
	Achieved  money.Amount `json:"achieved"`
	Remaining money.Amount `json:"remaining"`
	Percent   int          `json:"percent"`
}
