package company

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant. Its invite code binds new collaborators to it.
type Company struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// User is a staff member of a company: an admin or a collaborator.
type User struct {
	ID           uuid.UUID `json:"id"`
	CompanyID    uuid.UUID `json:"companyId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Function     *string   `json:"function,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AdminRegistration struct {
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
}

type CollaboratorRegistration struct {
	InviteCode string  `json:"inviteCode"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Phone      string  `json:"phone"`
	Function   *string `json:"function"`
}

// UserUpdate carries the fields an admin may change on a user. Nil fields
// are left untouched.
type UserUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Function *string `json:"function"`
}
