package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
)

type fakeUserRepo struct {
	byID    map[id.ID]*User
	byLogin map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[id.ID]*User),
		byLogin: make(map[string]*User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User) error {
	cp := *u
	f.byID[u.ID] = &cp
	f.byLogin[u.Login] = &cp
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *User) error {
	cp := *u
	f.byID[u.ID] = &cp
	f.byLogin[u.Login] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*User, error) {
	u, ok := f.byLogin[login]
	if !ok {
		return nil, apperror.NewNotFound("user", login)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, login string) (bool, error) {
	_, ok := f.byLogin[login]
	return ok, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func newTestService() (*Service, *fakeUserRepo, *JWTService) {
	repo := newFakeUserRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(repo, jwtSvc, DefaultServiceConfig())
	return svc, repo, jwtSvc
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterRequest{
			Login:    "caissier1",
			Password: "motdepasse",
		})
		require.NoError(t, err)
		assert.Equal(t, "caissier1", user.Login)
		assert.NotEqual(t, "motdepasse", user.PasswordHash)
		assert.True(t, user.IsActive)
	})

	t.Run("duplicate login rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Login: "caissier1", Password: "motdepasse"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Login: "caissier2", Password: "court"})
		require.Error(t, err)
	})

	t.Run("empty login rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Password: "motdepasse"})
		require.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	svc, repo, jwtSvc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Login:    "gerant",
		Password: "motdepasse",
		IsAdmin:  true,
	})
	require.NoError(t, err)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		token, user, err := svc.Login(ctx, Credentials{Login: "gerant", Password: "motdepasse"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.True(t, token.ExpiresAt.After(time.Now()))

		uc, err := jwtSvc.ValidateToken(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), uc.UserID)
		assert.Equal(t, "gerant", uc.Login)
		assert.True(t, uc.IsAdmin)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, _, err := svc.Login(ctx, Credentials{Login: "inconnu", Password: "motdepasse"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	})

	t.Run("wrong password counts a failed attempt", func(t *testing.T) {
		_, _, err := svc.Login(ctx, Credentials{Login: "gerant", Password: "faux"})
		require.Error(t, err)

		stored := repo.byLogin["gerant"]
		assert.Equal(t, 1, stored.FailedLoginAttempts)
	})

	t.Run("repeated failures lock the account", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, _, _ = svc.Login(ctx, Credentials{Login: "gerant", Password: "faux"})
		}

		_, _, err := svc.Login(ctx, Credentials{Login: "gerant", Password: "motdepasse"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	})
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Login: "parti", Password: "motdepasse"})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, repo.Update(ctx, user))

	_, _, err = svc.Login(ctx, Credentials{Login: "parti", Password: "motdepasse"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Login: "caissier", Password: "ancienmdp"})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "faux", "nouveaumdp")
		require.Error(t, err)
	})

	t.Run("success then login with new password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "ancienmdp", "nouveaumdp"))

		_, _, err := svc.Login(ctx, Credentials{Login: "caissier", Password: "ancienmdp"})
		require.Error(t, err)

		_, _, err = svc.Login(ctx, Credentials{Login: "caissier", Password: "nouveaumdp"})
		require.NoError(t, err)
	})
}

func TestValidateToken_Tampered(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("secret-a"))
	other := NewJWTService(DefaultJWTConfig("secret-b"))

	user := NewUser("gerant", "hash")
	token, _, err := jwtSvc.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)

	_, err = jwtSvc.ValidateToken(token + "x")
	require.Error(t, err)
}
