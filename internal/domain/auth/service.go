package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/findmy/pkg/errors"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (UserView, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
}

type service struct {
	repo   Repository
	google IDTokenVerifier
	tokens *tokenIssuer
	logger *slog.Logger
}

const (
	maxNicknameLetters = 10
	minPasswordLength  = 8
)

// NewService constructs a Service. A nil google verifier disables Google sign-in.
func NewService(cfg Config, repo Repository, google IDTokenVerifier, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		google: google,
		tokens: newTokenIssuer(cfg.Secret, cfg.TokenTTL),
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	nickname := deriveNickname(email)
	if strings.TrimSpace(req.Nickname) != "" {
		if nickname, err = normalizeNickname(req.Nickname); err != nil {
			return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
		}
	}
	if len(req.Password) < minPasswordLength {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password must be at least 8 characters", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, NewUser{Email: email, Nickname: nickname, PasswordHash: string(hashed)})
	if errors.Is(err, ErrEmailExists) {
		return UserView{}, apperrors.Wrap("email_exists", "email already registered", err)
	}
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to create user", err)
	}
	s.logger.Info("user registered", "userId", user.ID)
	return toView(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	if req.Password == "" {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to fetch user", err)
	}
	if !found || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return TokenResponse{}, apperrors.Wrap("invalid_credentials", "invalid email or password", nil)
	}
	return s.tokens.issue(user)
}

// GoogleSignIn trades a verified Google ID token for a bearer token. The
// Google subject is looked up first, then a verified email is matched against
// existing accounts, and otherwise a password-less account is created.
func (s *service) GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (TokenResponse, error) {
	if s.google == nil {
		return TokenResponse{}, apperrors.Wrap("auth_not_configured", "google sign-in is not configured", nil)
	}
	raw := strings.TrimSpace(req.IDToken)
	if raw == "" {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "id_token is required", nil)
	}
	identity, err := s.google.Verify(ctx, raw)
	if err != nil {
		s.logger.Warn("google id token rejected", "error", err)
		return TokenResponse{}, apperrors.Wrap("invalid_token", "google id token rejected", err)
	}
	if identity.Subject == "" || !identity.EmailVerified {
		return TokenResponse{}, apperrors.Wrap("invalid_token", "google account email is not verified", nil)
	}
	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("invalid_token", "google account has no usable email", err)
	}

	user, found, err := s.repo.GetByGoogleSubject(ctx, identity.Subject)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to fetch user", err)
	}
	if !found {
		user, err = s.bindGoogleAccount(ctx, email, identity)
		if err != nil {
			return TokenResponse{}, err
		}
	}
	return s.tokens.issue(user)
}

func (s *service) bindGoogleAccount(ctx context.Context, email string, identity GoogleIdentity) (User, error) {
	existing, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, apperrors.Wrap("auth_error", "failed to fetch user", err)
	}
	if found {
		if existing.GoogleSubject != "" {
			return User{}, apperrors.Wrap(apperrors.CodeConflict, "email is linked to another google account", nil)
		}
		user, err := s.repo.LinkGoogle(ctx, existing.ID, identity.Subject)
		if err != nil {
			return User{}, googleStoreError(err)
		}
		s.logger.Info("google account linked", "userId", user.ID)
		return user, nil
	}

	nickname, err := normalizeNickname(lettersOf(identity.Name))
	if err != nil {
		nickname = deriveNickname(email)
	}
	user, err := s.repo.Create(ctx, NewUser{Email: email, Nickname: nickname, GoogleSubject: identity.Subject})
	if err != nil {
		return User{}, googleStoreError(err)
	}
	s.logger.Info("user registered with google", "userId", user.ID)
	return user, nil
}

func googleStoreError(err error) error {
	switch {
	case errors.Is(err, ErrEmailExists):
		return apperrors.Wrap("email_exists", "email already registered", err)
	case errors.Is(err, ErrSubjectTaken):
		return apperrors.Wrap(apperrors.CodeConflict, "google account already linked", err)
	}
	return apperrors.Wrap("auth_error", "failed to store google account", err)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	return s.tokens.parse(token)
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to load profile", err)
	}
	if !found {
		return UserView{}, apperrors.Wrap("user_not_found", "user not found", nil)
	}
	return toView(user), nil
}

func toView(user User) UserView {
	return UserView{
		ID:           user.ID,
		Email:        user.Email,
		Nickname:     user.Nickname,
		GoogleLinked: user.GoogleSubject != "",
		HasPassword:  user.PasswordHash != "",
		CreatedAt:    user.CreatedAt,
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}

func normalizeNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return "", errors.New("nickname cannot be empty")
	}
	if len([]rune(nickname)) > maxNicknameLetters {
		return "", errors.New("nickname cannot exceed 10 letters")
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) {
			return "", errors.New("nickname must contain only letters")
		}
	}
	return nickname, nil
}

// deriveNickname keeps the leading letters of the email local part.
func deriveNickname(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if nickname := lettersOf(local); nickname != "" {
		return nickname
	}
	return "User"
}

// lettersOf keeps at most maxNicknameLetters letters of s.
func lettersOf(s string) string {
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count == maxNicknameLetters {
			break
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
			count++
		}
	}
	return b.String()
}
