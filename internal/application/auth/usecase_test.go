package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	hash, err := usecase.HashPIN("4321")
	require.NoError(t, err)
	require.NoError(t, repos.Employees.Create(ctx, &entity.Employee{ID: "e1", Name: "RITA", PINHash: hash}))
	require.NoError(t, repos.Employees.Create(ctx, &entity.Employee{ID: "e2", Name: "SEM PIN"}))
	require.NoError(t, repos.Employees.Create(ctx, &entity.Employee{ID: "e3", Name: "SAIU", PINHash: hash, Deleted: true}))

	uc := auth.NewAuthUseCase(repos.Employees, auth.JWTConfig{Secret: "s3cr3t", ExpMinutes: 10, Issuer: "farmacia-pos"})

	out, err := uc.Login(ctx, dto.LoginRequest{EmployeeID: "e1", PIN: "4321"})
	require.NoError(t, err)
	assert.Equal(t, "RITA", out.Employee.Name)
	claims, err := jwt.Parse("s3cr3t", out.Token)
	require.NoError(t, err)
	assert.Equal(t, "e1", claims.EmployeeID)

	_, err = uc.Login(ctx, dto.LoginRequest{EmployeeID: "e1", PIN: "0000"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{EmployeeID: "e2", PIN: "0000"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{EmployeeID: "nope", PIN: "4321"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{EmployeeID: "e3", PIN: "4321"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	disabled := auth.NewAuthUseCase(repos.Employees, auth.JWTConfig{})
	assert.False(t, disabled.Enabled())
	_, err = disabled.Login(ctx, dto.LoginRequest{EmployeeID: "e1", PIN: "4321"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
