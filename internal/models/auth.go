package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access from refresh bearers.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload issued on login. UserType selects the identity
// table the caller is resolved against; Refresh marks refresh bearers.
type Claims struct {
	UserID      string `json:"user_id"`
	UserType    string `json:"user_type"`
	AccessLevel int    `json:"access_level"`
	Refresh     bool   `json:"refresh"`
	jwt.RegisteredClaims
}

// Kind returns the bearer kind encoded in the claims.
func (c *Claims) Kind() TokenKind {
	if c.Refresh {
		return TokenKindRefresh
	}
	return TokenKindAccess
}

// LoginRequest authenticates one of the three audiences by email.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest carries the current and replacement passwords.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ForgotPasswordRequest triggers a generated password for non-staff users.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetRequest mints an out-of-band reset token for the email.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
