package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/mail"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
	"github.com/noah-isme/sims-api/pkg/config"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

type accountStore interface {
	FindByEmail(ctx context.Context, userType identity.UserType, email string) (*repository.Account, error)
	FindByID(ctx context.Context, userType identity.UserType, id string) (*repository.Account, error)
	UpdatePassword(ctx context.Context, userType identity.UserType, id, hash string) error
}

type revocationStore interface {
	Revoke(ctx context.Context, jti string, remaining time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type resetTokenStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, token string) (bool, error)
}

// AuthService authenticates the three audiences, rotates credentials and
// resolves bearers into actors.
type AuthService struct {
	accounts  accountStore
	revoked   revocationStore
	resets    resetTokenStore
	repos     *Repos
	mailer    mail.Mailer
	jwtConfig config.JWTConfig
	logger    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(
	accounts accountStore,
	revoked revocationStore,
	resets resetTokenStore,
	repos *Repos,
	mailer mail.Mailer,
	jwtConfig config.JWTConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:  accounts,
		revoked:   revoked,
		resets:    resets,
		repos:     repos,
		mailer:    mailer,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Login verifies credentials for one audience and issues a token pair.
func (s *AuthService) Login(ctx context.Context, userType identity.UserType, req models.LoginRequest) (*models.TokenPair, error) {
	email, err := validation.Email("email", req.Email)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByEmail(ctx, userType, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, s.storeFailure(err, "login lookup")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(account, userType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", zap.String("user_type", string(userType)), zap.String("user_id", account.ID))
	return pair, nil
}

// Refresh exchanges validated refresh claims for a fresh pair and revokes
// the presented refresh token.
func (s *AuthService) Refresh(ctx context.Context, claims *models.Claims) (*models.TokenPair, error) {
	if claims.Kind() != models.TokenKindRefresh {
		return nil, apperrors.ErrRefreshRequired
	}
	account, err := s.accounts.FindByID(ctx, identity.UserType(claims.UserType), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, s.storeFailure(err, "refresh lookup")
	}
	if err := s.revokeClaims(ctx, claims); err != nil {
		return nil, err
	}
	return s.issuePair(account, identity.UserType(claims.UserType))
}

// Logout revokes the presented bearer for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *models.Claims) error {
	if err := s.revokeClaims(ctx, claims); err != nil {
		return err
	}
	s.logger.Info("logout", zap.String("user_id", claims.UserID), zap.String("jti", claims.ID))
	return nil
}

// ValidateToken parses and verifies a bearer, enforcing the expected kind and
// the revocation set.
func (s *AuthService) ValidateToken(ctx context.Context, rawToken string, expected models.TokenKind) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.jwtConfig.Algorithm {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.Kind() != expected {
		if expected == models.TokenKindAccess {
			return nil, apperrors.ErrAccessRequired
		}
		return nil, apperrors.ErrRefreshRequired
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, s.storeFailure(err, "revocation check")
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// ResolveCaller turns validated claims into the concrete actor, failing when
// the identity row no longer exists or is archived.
func (s *AuthService) ResolveCaller(ctx context.Context, claims *models.Claims) (identity.Actor, error) {
	account, err := s.accounts.FindByID(ctx, identity.UserType(claims.UserType), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.Actor{}, apperrors.ErrUserNotFound
		}
		return identity.Actor{}, s.storeFailure(err, "caller resolution")
	}
	return identity.Actor{
		ID:          account.ID,
		Type:        identity.UserType(claims.UserType),
		AccessLevel: account.AccessLevel,
	}, nil
}

// ChangePassword verifies the current password, rotates the hash and revokes
// the presented bearer so the old session dies with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, claims *models.Claims, req models.ChangePasswordRequest) error {
	userType := identity.UserType(claims.UserType)
	account, err := s.accounts.FindByID(ctx, userType, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return s.storeFailure(err, "change password lookup")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return apperrors.ErrWrongPassword
	}
	password, err := validation.Password("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash replacement password")
	}
	if err := s.accounts.UpdatePassword(ctx, userType, account.ID, string(hash)); err != nil {
		return s.storeFailure(err, "password update")
	}
	if err := s.revokeClaims(ctx, claims); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_type", string(userType)), zap.String("user_id", account.ID))
	return nil
}

// ForgotPassword generates a replacement password for students and guardians
// and mails it out of band. A student's password goes to their guardian.
func (s *AuthService) ForgotPassword(ctx context.Context, userType identity.UserType, req models.ForgotPasswordRequest) error {
	if userType == identity.UserTypeStaff {
		return apperrors.Clone(apperrors.ErrForbidden, "staff use the password reset flow")
	}
	email, err := validation.Email("email", req.Email)
	if err != nil {
		return err
	}
	account, err := s.accounts.FindByEmail(ctx, userType, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return s.storeFailure(err, "forgot password lookup")
	}

	password, err := generatePassword()
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "generate replacement password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash generated password")
	}
	if err := s.accounts.UpdatePassword(ctx, userType, account.ID, string(hash)); err != nil {
		return s.storeFailure(err, "generated password update")
	}

	recipient, err := s.notificationAddress(ctx, userType, account)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Hello,\n\nA new password was generated for %s: %s\n\nChange it after the next login.", account.Name, password)
	if err := s.mailer.Send(recipient, "Your new password", body); err != nil {
		return apperrors.Wrap(err, apperrors.KindUnavailable, apperrors.ErrUnavailable.Status,
			"could not deliver the generated password", "mail generated password")
	}
	s.logger.Info("password regenerated", zap.String("user_type", string(userType)), zap.String("user_id", account.ID))
	return nil
}

// RequestPasswordReset mints an opaque short-lived token and mails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, userType identity.UserType, req models.ResetRequest) error {
	email, err := validation.Email("email", req.Email)
	if err != nil {
		return err
	}
	account, err := s.accounts.FindByEmail(ctx, userType, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return s.storeFailure(err, "reset request lookup")
	}

	token, err := s.resets.Issue(ctx, account.Email)
	if err != nil {
		return s.storeFailure(err, "reset token issue")
	}
	body := fmt.Sprintf("Hello %s,\n\nUse this token to reset your password: %s\n\nIt expires in %s.",
		account.Name, token, s.jwtConfig.ResetTokenTTL)
	if err := s.mailer.Send(account.Email, "Password reset", body); err != nil {
		return apperrors.Wrap(err, apperrors.KindUnavailable, apperrors.ErrUnavailable.Status,
			"could not deliver the reset token", "mail reset token")
	}
	return nil
}

// ResetPassword consumes an outstanding reset token and rotates the hash.
func (s *AuthService) ResetPassword(ctx context.Context, userType identity.UserType, req models.ResetPasswordRequest) error {
	email, err := validation.Email("email", req.Email)
	if err != nil {
		return err
	}
	ok, err := s.resets.Consume(ctx, email, req.Token)
	if err != nil {
		return s.storeFailure(err, "reset token consume")
	}
	if !ok {
		return apperrors.ErrResetLinkExpired
	}
	account, err := s.accounts.FindByEmail(ctx, userType, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return s.storeFailure(err, "reset password lookup")
	}
	password, err := validation.Password("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash reset password")
	}
	if err := s.accounts.UpdatePassword(ctx, userType, account.ID, string(hash)); err != nil {
		return s.storeFailure(err, "reset password update")
	}
	s.logger.Info("password reset", zap.String("user_type", string(userType)), zap.String("user_id", account.ID))
	return nil
}

func (s *AuthService) issuePair(account *repository.Account, userType identity.UserType) (*models.TokenPair, error) {
	now := time.Now().UTC()
	access, err := s.signToken(account, userType, now, s.jwtConfig.AccessExpiration, false)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(account, userType, now, s.jwtConfig.RefreshExpiration, true)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtConfig.AccessExpiration.Seconds()),
		IssuedAt:     now,
	}, nil
}

func (s *AuthService) signToken(account *repository.Account, userType identity.UserType, now time.Time, lifetime time.Duration, refresh bool) (string, error) {
	claims := &models.Claims{
		UserID:      account.ID,
		UserType:    string(userType),
		AccessLevel: account.AccessLevel,
		Refresh:     refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.GetSigningMethod(s.jwtConfig.Algorithm), claims).SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "sign bearer token")
	}
	return signed, nil
}

func (s *AuthService) revokeClaims(ctx context.Context, claims *models.Claims) error {
	remaining := time.Duration(0)
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return s.storeFailure(err, "revoke bearer")
	}
	return nil
}

// notificationAddress resolves where an out-of-band credential goes: the
// guardian for students, the account itself otherwise.
func (s *AuthService) notificationAddress(ctx context.Context, userType identity.UserType, account *repository.Account) (string, error) {
	if userType != identity.UserTypeStudent {
		return account.Email, nil
	}
	student, err := s.repos.Students.GetActive(ctx, account.ID)
	if err != nil {
		return "", s.storeFailure(err, "student lookup for notification")
	}
	if student.GuardianID == nil {
		return account.Email, nil
	}
	guardian, err := s.repos.Guardians.GetActive(ctx, *student.GuardianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Email, nil
		}
		return "", s.storeFailure(err, "guardian lookup for notification")
	}
	return guardian.Email, nil
}

func (s *AuthService) storeFailure(err error, operation string) error {
	return apperrors.Wrap(err, apperrors.KindUnavailable, apperrors.ErrUnavailable.Status,
		apperrors.ErrUnavailable.Message, operation+" failed")
}

// Generated passwords satisfy the same rules the validators enforce.
const (
	generatedLength  = 10
	passwordUppers   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordLowers   = "abcdefghijkmnpqrstuvwxyz"
	passwordDigits   = "23456789"
	passwordSpecials = "@#$%&*!?"
)

func generatePassword() (string, error) {
	pools := []string{passwordUppers, passwordLowers, passwordDigits, passwordSpecials}
	all := passwordUppers + passwordLowers + passwordDigits + passwordSpecials

	out := make([]byte, 0, generatedLength)
	for _, pool := range pools {
		c, err := randomFrom(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < generatedLength {
		c, err := randomFrom(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}
	return string(out), nil
}

func randomFrom(pool string) (byte, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return 0, err
	}
	return pool[idx.Int64()], nil
}
