package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
	"github.com/noah-isme/sims-api/pkg/config"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

type fakeAccounts struct {
	byEmail  map[string]*repository.Account
	byID     map[string]*repository.Account
	updated  map[string]string
	findErr  error
	writeErr error
}

func (f *fakeAccounts) FindByEmail(_ context.Context, _ identity.UserType, email string) (*repository.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if acc, ok := f.byEmail[email]; ok {
		return acc, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccounts) FindByID(_ context.Context, _ identity.UserType, id string) (*repository.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if acc, ok := f.byID[id]; ok {
		return acc, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, _ identity.UserType, id, hash string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.updated == nil {
		f.updated = make(map[string]string)
	}
	f.updated[id] = hash
	return nil
}

type fakeRevocations struct {
	revoked map[string]time.Duration
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, remaining time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[jti] = remaining
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeResets struct {
	issued map[string]string
}

func (f *fakeResets) Issue(_ context.Context, email string) (string, error) {
	if f.issued == nil {
		f.issued = make(map[string]string)
	}
	f.issued[email] = "reset-token"
	return "reset-token", nil
}

func (f *fakeResets) Consume(_ context.Context, email, token string) (bool, error) {
	stored, ok := f.issued[email]
	if !ok || stored != token {
		return false, nil
	}
	delete(f.issued, email)
	return true, nil
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Algorithm:         "HS256",
		AccessExpiration:  15 * time.Minute,
		RefreshExpiration: 24 * time.Hour,
		ResetTokenTTL:     time.Hour,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAccounts, *fakeRevocations, *fakeResets, *fakeMailer) {
	t.Helper()
	account := &repository.Account{
		ID:           "acc-1",
		Name:         "Ada Obi",
		Email:        "ada@school.ng",
		PasswordHash: mustHash(t, "Current@22"),
		AccessLevel:  models.AccessLevelStandard,
	}
	accounts := &fakeAccounts{
		byEmail: map[string]*repository.Account{account.Email: account},
		byID:    map[string]*repository.Account{account.ID: account},
	}
	revoked := &fakeRevocations{}
	resets := &fakeResets{}
	mailer := &fakeMailer{}
	svc := NewAuthService(accounts, revoked, resets, nil, mailer, testJWTConfig(), nil)
	return svc, accounts, revoked, resets, mailer
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "Ada@School.NG", Password: "Current@22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.UserID)
	assert.Equal(t, string(identity.UserTypeStaff), claims.UserType)
	assert.Equal(t, models.TokenKindAccess, claims.Kind())

	refreshClaims, err := svc.ValidateToken(context.Background(), pair.RefreshToken, models.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindRefresh, refreshClaims.Kind())
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Wrong@123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredentials))
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "nobody@school.ng", Password: "Current@22",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredentials))
}

func TestValidateTokenEnforcesKind(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), pair.RefreshToken, models.TokenKindAccess)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAccessTokenRequired))

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindRefresh)
	assert.True(t, apperrors.IsKind(err, apperrors.KindRefreshTokenRequired))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token", models.TokenKindAccess)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTokenInvalid))
}

func TestLogoutRevokesBearer(t *testing.T) {
	svc, _, revoked, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), claims))
	assert.Contains(t, revoked.revoked, claims.ID)

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTokenRevoked))
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	svc, _, revoked, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), pair.RefreshToken, models.TokenKindRefresh)
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), claims)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
	assert.Contains(t, revoked.revoked, claims.ID)

	// The spent refresh token no longer validates.
	_, err = svc.ValidateToken(context.Background(), pair.RefreshToken, models.TokenKindRefresh)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTokenRevoked))
}

func TestRefreshRejectsAccessClaims(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), claims)
	assert.True(t, apperrors.IsKind(err, apperrors.KindRefreshTokenRequired))
}

func TestResolveCallerBuildsActor(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)

	actor, err := svc.ResolveCaller(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", actor.ID)
	assert.Equal(t, identity.UserTypeStaff, actor.Type)
	assert.Equal(t, models.AccessLevelStandard, actor.AccessLevel)
}

func TestChangePasswordRotatesHashAndKillsSession(t *testing.T) {
	svc, accounts, revoked, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		CurrentPassword: "Current@22", NewPassword: "Fresh@2026",
	})
	require.NoError(t, err)

	hash, ok := accounts.updated["acc-1"]
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Fresh@2026")))
	assert.Contains(t, revoked.revoked, claims.ID)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	svc, accounts, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), identity.UserTypeStaff, models.LoginRequest{
		Email: "ada@school.ng", Password: "Current@22",
	})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		CurrentPassword: "Wrong@123", NewPassword: "Fresh@2026",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindWrongPassword))
	assert.Empty(t, accounts.updated)
}

func TestForgotPasswordRefusesStaff(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	err := svc.ForgotPassword(context.Background(), identity.UserTypeStaff, models.ForgotPasswordRequest{
		Email: "ada@school.ng",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestForgotPasswordMailsGeneratedCredential(t *testing.T) {
	svc, accounts, _, _, mailer := newAuthFixture(t)

	err := svc.ForgotPassword(context.Background(), identity.UserTypeGuardian, models.ForgotPasswordRequest{
		Email: "ada@school.ng",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@school.ng", mailer.sent[0].to)

	// The mailed password matches the stored hash.
	parts := strings.Split(mailer.sent[0].body, ": ")
	require.Len(t, parts, 2)
	password := strings.SplitN(parts[1], "\n", 2)[0]
	hash := accounts.updated["acc-1"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)))
}

func TestResetFlowRoundTrip(t *testing.T) {
	svc, accounts, _, _, mailer := newAuthFixture(t)

	err := svc.RequestPasswordReset(context.Background(), identity.UserTypeStaff, models.ResetRequest{
		Email: "ada@school.ng",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "reset-token")

	err = svc.ResetPassword(context.Background(), identity.UserTypeStaff, models.ResetPasswordRequest{
		Email: "ada@school.ng", Token: "reset-token", NewPassword: "Fresh@2026",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts.updated["acc-1"]), []byte("Fresh@2026")))

	// A spent token cannot be replayed.
	err = svc.ResetPassword(context.Background(), identity.UserTypeStaff, models.ResetPasswordRequest{
		Email: "ada@school.ng", Token: "reset-token", NewPassword: "Other@2026",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindResetLinkExpired))
}

func TestGeneratedPasswordsPassValidation(t *testing.T) {
	for i := 0; i < 20; i++ {
		password, err := generatePassword()
		require.NoError(t, err)
		require.Len(t, password, generatedLength)
		_, err = validation.Password("password", password)
		assert.NoError(t, err)
	}
}
