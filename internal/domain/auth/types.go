package auth

import "time"

// Config drives token issuing and Google sign-in.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	Google   GoogleConfig
}

// GoogleConfig identifies the OAuth client whose ID tokens are accepted.
// An empty ClientID disables Google sign-in.
type GoogleConfig struct {
	ClientID string
	Issuer   string
	JWKSURL  string
}

// User is a persisted account. Accounts created through Google carry no
// password hash and cannot use password login.
type User struct {
	ID            int64
	Email         string
	Nickname      string
	PasswordHash  string
	GoogleSubject string
	CreatedAt     time.Time
}

// NewUser is the insert payload for Repository.Create.
type NewUser struct {
	Email         string
	Nickname      string
	PasswordHash  string
	GoogleSubject string
}

// RegisterRequest captures the registration payload. Nickname is optional and
// derived from the email local part when absent.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest captures password login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInRequest carries the ID token the frontend obtained from Google.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token"`
}

// TokenResponse returns a signed bearer token.
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserView `json:"user"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	GoogleLinked bool      `json:"google_linked"`
	HasPassword  bool      `json:"has_password"`
	CreatedAt    time.Time `json:"created_at"`
}

// Claims are extracted from a verified bearer token.
type Claims struct {
	UserID    int64
	Email     string
	ExpiresAt time.Time
}
