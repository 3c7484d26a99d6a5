package procedure

import (
	"time"

	"github.com/google/uuid"

	"github.com/beautydesk/beautydesk/pkg/money"
)

// Procedure is a priced service a company offers, e.g. a haircut.
type Procedure struct {
	ID        uuid.UUID    `json:"id"`
	CompanyID uuid.UUID    `json:"companyId"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Resolution is the outcome of pricing a list of procedure ids: the
// procedures in request order and the exact sum of their prices.
type Resolution struct {
	Procedures []*Procedure
	Total      money.Amount
}

// IDs returns the procedure ids in order.
func (r *Resolution) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Procedures))
	for i, p := range r.Procedures {
		ids[i] = p.ID
	}
	return ids
}

// Primary returns the first procedure, kept on appointments as the legacy
// single-procedure reference.
func (r *Resolution) Primary() *Procedure {
	if len(r.Procedures) == 0 {
		return nil
	}
	return r.Procedures[0]
}
