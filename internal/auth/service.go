package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jvales/shopstate/pkg/config"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/jvales/shopstate/pkg/security"
)

// User is the public view of the registered account.
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// storedUser is the persisted account record. The password is kept only
// as an Argon2id hash.
type storedUser struct {
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session reports the current authentication state.
type Session struct {
	User       *User `json:"user"`
	IsLoggedIn bool  `json:"isLoggedIn"`
}

// RegisterInput carries a new account registration.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginInput carries a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successful login: the account plus a signed session
// token.
type LoginResult struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// ServiceParams groups dependencies for the session manager.
type ServiceParams struct {
	Store    stateStore
	Logger   *logger.Logger
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

// Service manages the single local account and its session.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (User, error)
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) Session
	VerifyToken(token string) (string, error)
}

type service struct {
	mu       sync.Mutex
	user     *storedUser
	loggedIn bool
	store    stateStore
	logg     *logger.Logger
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	now      func() time.Time
}

// NewService restores the account and session flag from the store. The
// session counts as active only when both the account record and the
// logged-in flag are present.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if params.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	s := &service{
		store:  params.Store,
		logg:   params.Logger,
		jwtCfg: params.JWT,
		pwCfg:  params.Password,
		now:    now,
	}

	var record storedUser
	found, err := params.Store.Get(ctx, kv.KeyUser, &record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore account")
	}
	if found {
		s.user = &record
	}

	var flag bool
	if _, err := params.Store.Get(ctx, kv.KeyLoggedIn, &flag); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore session flag")
	}
	s.loggedIn = found && flag

	return s, nil
}

// Register creates the local account, replacing any previous one. It does
// not start a session; the caller logs in separately.
func (s *service) Register(ctx context.Context, input RegisterInput) (User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := normalizeEmail(input.Email)
	if fullName == "" || email == "" || input.Password == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "full name, email and password are required")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := storedUser{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Put(ctx, kv.KeyUser, record); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist account")
	}
	// A replaced account must not inherit the previous session.
	if err := s.store.Delete(ctx, kv.KeyLoggedIn); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session flag")
	}
	s.user = &record
	s.loggedIn = false

	return User{FullName: fullName, Email: email}, nil
}

// Login checks the credentials against the stored account. Any mismatch
// fails with the same unauthorized error and leaves the session state
// untouched.
func (s *service) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	email := normalizeEmail(input.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.Email != email {
		return LoginResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	ok, err := security.VerifyPassword(input.Password, s.user.PasswordHash)
	if err != nil {
		return LoginResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return LoginResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	if err := s.store.Put(ctx, kv.KeyLoggedIn, true); err != nil {
		return LoginResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session flag")
	}
	s.loggedIn = true

	token, expiresAt, err := s.mintToken(s.user)
	if err != nil {
		return LoginResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign session token")
	}

	return LoginResult{
		User:      User{FullName: s.user.FullName, Email: s.user.Email},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout ends the session. The account record stays so the user can log
// back in.
func (s *service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, kv.KeyLoggedIn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session flag")
	}
	s.loggedIn = false
	return nil
}

// Session reports the restored or current authentication state.
func (s *service) Session(ctx context.Context) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return Session{IsLoggedIn: false}
	}
	user := User{FullName: s.user.FullName, Email: s.user.Email}
	return Session{User: &user, IsLoggedIn: s.loggedIn}
}

// VerifyToken validates a session token and returns the account email it
// was minted for.
func (s *service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithIssuer(s.jwtCfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.user == nil || s.user.Email != subject {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session is no longer active")
	}
	return subject, nil
}

func (s *service) mintToken(user *storedUser) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.jwtCfg.Expiration())

	claims := jwt.MapClaims{
		"sub":  user.Email,
		"name": user.FullName,
		"iss":  s.jwtCfg.Issuer,
		"iat":  jwt.NewNumericDate(issuedAt),
		"exp":  jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
