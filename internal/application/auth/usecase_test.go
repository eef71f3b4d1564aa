package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reagentes-api/pkg/jwt"
)

const testSecret = "test-secret"

func newAuth() (*AuthUseCase, *memory.Store) {
	store := memory.NewStore()
	return NewAuthUseCase(store.Users(), JWTConfig{Secret: testSecret, ExpMinutes: 10, Issuer: "reagentes-api"}), store
}

func TestLogin_CredencialesValidasDevuelveToken(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	created, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "segura123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, created.Role)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "segura123"})
	require.NoError(t, err)
	claims, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

func TestLogin_Errores(t *testing.T) {
	uc, store := newAuth()
	ctx := context.Background()
	created, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "segura123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bruno", Password: "segura123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	u, err := store.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	u.Active = false
	require.NoError(t, store.Users().Update(ctx, u))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "segura123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateUser_UsernameDuplicado(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "segura123"})
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "segura456"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestEnsureAdmin_SoloLaPrimeraVez(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin", "admin1234", "admin@lab.local")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = uc.EnsureAdmin(ctx, "admin", "admin1234", "admin@lab.local")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleAdmin, users[0].Role)
}
