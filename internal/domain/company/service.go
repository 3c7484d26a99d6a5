package company

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeAttempts = 5
)

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	EndAllForUser(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	companies CompanyRepository
	users     UserRepository
	tx        db.Transactor
	sessions  SessionRevoker
	newCode   func() (string, error)
}

func NewService(companies CompanyRepository, users UserRepository, tx db.Transactor, sessions SessionRevoker) *Service {
	return &Service{
		companies: companies,
		users:     users,
		tx:        tx,
		sessions:  sessions,
		newCode:   generateInviteCode,
	}
}

// -- Registration & login --

// RegisterAdmin creates a company together with its first admin user.
func (s *Service) RegisterAdmin(ctx context.Context, in AdminRegistration) (*User, *Company, error) {
	companyName := strings.TrimSpace(in.CompanyName)
	if companyName == "" {
		return nil, nil, apperr.Validation("companyName is required")
	}
	u, err := s.newUser(ctx, in.Name, in.Email, in.Password, in.Phone)
	if err != nil {
		return nil, nil, err
	}
	u.Role = auth.RoleAdmin

	var c *Company
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		code, err := s.uniqueInviteCode(ctx)
		if err != nil {
			return err
		}
		c = &Company{Name: companyName, InviteCode: code}
		if err := s.companies.Create(ctx, c); err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		u.CompanyID = c.ID
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Ctx(ctx).Info().Str("company_id", c.ID.String()).Str("user_id", u.ID.String()).Msg("company registered")
	return u, c, nil
}

// RegisterCollaborator binds a new collaborator to the company owning the
// invite code.
func (s *Service) RegisterCollaborator(ctx context.Context, in CollaboratorRegistration) (*User, error) {
	code := strings.ToUpper(strings.TrimSpace(in.InviteCode))
	if code == "" {
		return nil, apperr.Validation("inviteCode is required")
	}
	u, err := s.newUser(ctx, in.Name, in.Email, in.Password, in.Phone)
	if err != nil {
		return nil, err
	}

	c, err := s.companies.GetByInviteCode(ctx, code)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.InvalidReference("invalid invite code")
	}
	if err != nil {
		return nil, err
	}

	u.CompanyID = c.ID
	u.Role = auth.RoleCollaborator
	u.Function = trimOptional(in.Function)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return u, nil
}

func (s *Service) newUser(ctx context.Context, name, email, password, phone string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("email already registered")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(phone),
	}, nil
}

func (s *Service) uniqueInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		_, err = s.companies.GetByInviteCode(ctx, code)
		if errors.Is(err, apperr.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", inviteCodeAttempts)
}

// -- Company --

func (s *Service) GetCompany(ctx context.Context, companyID uuid.UUID) (*Company, error) {
	return s.companies.GetByID(ctx, companyID)
}

// -- Users --

func (s *Service) GetUser(ctx context.Context, companyID, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.CompanyID != companyID {
		return nil, apperr.Forbidden("user belongs to another company")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListByCompany(ctx, companyID, limit, offset)
}

// UpdateUser applies an admin's edit. Admins cannot change their own role.
func (s *Service) UpdateUser(ctx context.Context, companyID, actorID, id uuid.UUID, in UserUpdate) (*User, error) {
	u, err := s.GetUser(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		u.Name = name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil && *in.Role != u.Role {
		if !auth.ValidRole(*in.Role) {
			return nil, apperr.Validation("invalid role: %s", *in.Role)
		}
		if id == actorID {
			return nil, apperr.Validation("you cannot change your own role")
		}
		u.Role = *in.Role
	}
	if in.Function != nil {
		u.Function = trimOptional(in.Function)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes a user of the company and ends their sessions.
func (s *Service) DeleteUser(ctx context.Context, companyID, actorID, id uuid.UUID) error {
	if id == actorID {
		return apperr.Validation("you cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.sessions != nil {
		if err := s.sessions.EndAllForUser(ctx, id); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("user_id", id.String()).Msg("failed to revoke sessions of deleted user")
		}
	}
	return nil
}

func generateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	b := make([]byte, inviteCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t") &&
		strings.Contains(email[at+1:], ".")
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
