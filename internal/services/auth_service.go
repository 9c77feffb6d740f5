package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

// SignUpRequest represents a new account registration
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// SignInRequest represents an email and password login
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is a user together with a freshly issued bearer token
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuthService handles authentication business logic
type AuthService struct {
	repo     *repository.Repository
	denylist auth.Denylist
	notifier ResetNotifier
	opts     Options
	now      func() time.Time
}

// NewAuthService creates a new AuthService. A nil denylist makes sign-out a no-op.
func NewAuthService(repo *repository.Repository, denylist auth.Denylist, opts Options) *AuthService {
	return &AuthService{
		repo:     repo,
		denylist: denylist,
		notifier: logResetNotifier{},
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// SetResetNotifier replaces the log-only reset delivery
func (s *AuthService) SetResetNotifier(n ResetNotifier) {
	s.notifier = n
}

// SignUp creates an account funded with the sign-up bonus and grows the euro
// pool by the bonus' entry fee.
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, fmt.Errorf("name: %w", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("email: %w", ErrInvalidInput)
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByName(ctx, name); err == nil {
		return nil, ErrDuplicateName
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        &email,
		PasswordHash: hash,
		Balance:      s.opts.SignupBonus,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if s.opts.SignupBonus <= 0 {
			return nil
		}
		if err := record(ctx, tx, user.ID, s.opts.SignupBonus, s.opts.SignupBonus,
			models.TransactionTypeSignupBonus, uuid.Nil, "Welcome bonus"); err != nil {
			return err
		}
		fee := decimal.NewFromInt(s.opts.SignupBonus).Div(decimal.NewFromInt(s.opts.FitcoinsPerEuro))
		if err := tx.IncrementSetting(ctx, models.SettingTotalEurosInSystem, fee); err != nil {
			return fmt.Errorf("update pool total: %w", err)
		}
		return nil
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			// lost a race with a concurrent sign-up
			if _, nameErr := s.repo.GetUserByName(ctx, name); nameErr == nil {
				return nil, ErrDuplicateName
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.RecordCredit(user.Balance)
	logger.Log.Info("user signed up", zap.String("user_id", user.ID.String()), zap.String("name", name))

	return s.issue(user)
}

// SignIn checks credentials and issues a token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// SignOut revokes the token until it would have expired
func (s *AuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.denylist == nil || tokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, tokenID, expiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound("load user", err)
	}
	return user, nil
}

// RequestPasswordReset stores a one-hour reset token for the account, if any.
// Unknown emails succeed silently so the endpoint cannot probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := s.now().UTC().Add(s.opts.ResetTokenTTL)
	// Only the digest is stored; the token itself goes to the notifier.
	if err := s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"reset_token":         hashResetToken(token),
		"reset_token_expires": expires,
	}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token, expires); err != nil {
		logger.Log.Error("password reset delivery failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// ResetPassword sets a new password using a valid reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	user, err := s.repo.GetUserByResetToken(ctx, hashResetToken(token), s.now().UTC())
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("load user: %w", err)
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"password_hash":       hash,
		"reset_token":         nil,
		"reset_token_expires": nil,
	})
}

// UpdatePassword changes the signed-in user's password after checking the
// current one
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return notFound("load user", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUser(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return notFound("update password", err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := auth.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	if len(password) < s.opts.PasswordMinLen || len(password) > 72 {
		return "", fmt.Errorf("password must be %d to 72 characters: %w", s.opts.PasswordMinLen, ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateResetToken returns 32 random bytes, hex encoded
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashResetToken is the sha256 hex digest kept in users.reset_token
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
