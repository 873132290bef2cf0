package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jvales/shopstate/pkg/config"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "shopstate-test",
		ExpirationMinutes: 60,
	}
}

func openTestStore(t *testing.T) *kv.Store {
	t.Helper()
	cfg := config.StoreConfig{Path: filepath.Join(t.TempDir(), "state.db")}
	store, err := kv.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAuth(t *testing.T, store *kv.Store) Service {
	t.Helper()
	svc, err := NewService(context.Background(), ServiceParams{
		Store:    store,
		JWT:      testJWTConfig(),
		Password: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc
}

func registerAndLogin(t *testing.T, svc Service) LoginResult {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{
		FullName: "Jane Tester",
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
	return result
}

func TestRegisterDoesNotStartSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, openTestStore(t))

	user, err := svc.Register(ctx, RegisterInput{
		FullName: "Jane Tester",
		Email:    "Jane@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", user.Email)

	session := svc.Session(ctx)
	require.False(t, session.IsLoggedIn)
	require.NotNil(t, session.User)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, openTestStore(t))

	_, err := svc.Register(ctx, RegisterInput{Email: "jane@example.com"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestAuth(t, openTestStore(t))
	result := registerAndLogin(t, svc)

	require.NotEmpty(t, result.Token)

	email, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", email)

	session := svc.Session(context.Background())
	require.True(t, session.IsLoggedIn)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, openTestStore(t))

	_, err := svc.Register(ctx, RegisterInput{
		FullName: "Jane Tester",
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	require.False(t, svc.Session(ctx).IsLoggedIn)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, openTestStore(t))

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLogoutEndsSessionButKeepsAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, openTestStore(t))
	result := registerAndLogin(t, svc)

	require.NoError(t, svc.Logout(ctx))

	session := svc.Session(ctx)
	require.False(t, session.IsLoggedIn)
	require.NotNil(t, session.User)

	_, err := svc.VerifyToken(result.Token)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	_, err = svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
}

func TestSessionRestoresAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := newTestAuth(t, store)
	registerAndLogin(t, first)

	second := newTestAuth(t, store)
	session := second.Session(ctx)
	require.True(t, session.IsLoggedIn)
	require.Equal(t, "jane@example.com", session.User.Email)
}

func TestReRegisterEndsExistingSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := newTestAuth(t, store)
	registerAndLogin(t, first)

	_, err := first.Register(ctx, RegisterInput{
		FullName: "Eve Newcomer",
		Email:    "eve@example.com",
		Password: "hunter33",
	})
	require.NoError(t, err)
	require.False(t, first.Session(ctx).IsLoggedIn)

	// The replacement account starts logged out even after a restart.
	second := newTestAuth(t, store)
	session := second.Session(ctx)
	require.False(t, session.IsLoggedIn)
	require.Equal(t, "eve@example.com", session.User.Email)
}

func TestSessionNotRestoredWithoutFlag(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := newTestAuth(t, store)
	registerAndLogin(t, first)
	require.NoError(t, first.Logout(ctx))

	second := newTestAuth(t, store)
	require.False(t, second.Session(ctx).IsLoggedIn)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuth(t, openTestStore(t))
	registerAndLogin(t, svc)

	_, err := svc.VerifyToken("not.a.token")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}
