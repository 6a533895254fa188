package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/repository"
)


var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// UserStore is the part of the user repository the auth flow needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

// Mailer delivers account emails.
type Mailer interface {
	SendUsernameReminder(ctx context.Context, to, username string) error
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Referrer string
}

// AuthResult is a signed-in user with a fresh session token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// RequestMeta carries client details for the audit log.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type AuthService struct {
	users    UserStore
	sessions *SessionStore
	mailer   Mailer
	audit    *AuditService
}

func NewAuthService(users UserStore, sessions *SessionStore, mailer Mailer, audit *AuditService) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		audit:    audit,
	}
}

// Register creates an account with the current credential scheme and
// opens a session for it. An unknown referrer is dropped.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Referrer = strings.TrimSpace(in.Referrer)

	if !usernamePattern.MatchString(in.Username) {
		return nil, fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", ErrInvalidInput)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}

	if in.Referrer != "" {
		if _, err := s.users.GetByUsername(ctx, in.Referrer); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			logger.WithContext(ctx).Warn("unknown referrer dropped at registration", "referrer", in.Referrer)
			in.Referrer = ""
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		MembershipTier: domain.MembershipFree,
		ReferredBy:     in.Referrer,
		Videos:         []domain.Video{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionRegister, domain.AuditCategoryAuth, meta.IP, meta.UserAgent, map[string]interface{}{
		"referrer": in.Referrer,
	})

	return s.openSession(ctx, u)
}

// Authenticate verifies a username/password pair. Legacy credentials that
// match are rewritten in the current scheme.
func (s *AuthService) Authenticate(ctx context.Context, username, password string, meta RequestMeta) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogWithRequest(ctx, 0, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, meta.IP, meta.UserAgent, map[string]interface{}{
				"username": username,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, upgrade := VerifyPassword(u.PasswordHash, password)
	if !ok {
		s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, meta.IP, meta.UserAgent, nil)
		return nil, ErrInvalidCredentials
	}

	if upgrade {
		s.upgradeCredential(ctx, u, password)
	}

	s.audit.LogLogin(ctx, u.ID, meta.IP, meta.UserAgent)
	return s.openSession(ctx, u)
}

func (s *AuthService) upgradeCredential(ctx context.Context, u *domain.User, password string) {
	log := logger.WithContext(ctx).With("user_id", u.ID)

	hash, err := HashPassword(password)
	if err != nil {
		log.Error("credential upgrade failed", "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		log.Error("credential upgrade failed", "error", err)
		return
	}
	u.PasswordHash = hash
	s.audit.Log(ctx, u.ID, domain.AuditActionCredentialRehash, domain.AuditCategoryAuth, nil)
}

func (s *AuthService) openSession(ctx context.Context, u *domain.User) (*AuthResult, error) {
	token, claims, err := GenerateJWT(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Start(ctx, claims.SessionID, u.ID, claims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// Logout ends the session a token belongs to.
func (s *AuthService) Logout(ctx context.Context, claims *TokenClaims, meta RequestMeta) error {
	if err := s.sessions.End(ctx, claims.SessionID); err != nil {
		return err
	}
	s.audit.LogWithRequest(ctx, claims.UserID, domain.AuditActionLogout, domain.AuditCategoryAuth, meta.IP, meta.UserAgent, nil)
	return nil
}

// CheckSession reports whether a verified token still has a live session.
func (s *AuthService) CheckSession(ctx context.Context, claims *TokenClaims) (bool, error) {
	return s.sessions.Active(ctx, claims.SessionID, claims.UserID)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SendUsernameReminder mails the username registered to email.
func (s *AuthService) SendUsernameReminder(ctx context.Context, email string, meta RequestMeta) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if s.mailer == nil {
		return ErrMailNotConfigured
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.mailer.SendUsernameReminder(ctx, email, u.Username); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionUsernameReminder, domain.AuditCategoryAuth, meta.IP, meta.UserAgent, nil)
	return nil
}
