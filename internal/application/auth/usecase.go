package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login del funcionario en el caixa con su PIN.
type AuthUseCase struct {
	employees repository.EmployeeRepository
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(employees repository.EmployeeRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{employees: employees, jwtCfg: jwtCfg}
}

// Enabled indica si la API exige token (hay secret configurado).
func (uc *AuthUseCase) Enabled() bool { return uc.jwtCfg.Secret != "" }

// Login verifica funcionario + PIN, genera JWT y retorna token + funcionario.
// Funcionario inexistente, sin PIN o PIN incorrecto responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if !uc.Enabled() {
		return nil, domain.ErrForbidden
	}
	employee, err := uc.employees.GetByID(ctx, strings.TrimSpace(in.EmployeeID))
	if err != nil {
		return nil, err
	}
	if employee == nil || employee.PINHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PINHash), []byte(in.PIN)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if employee.Deleted {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, employee.ID, employee.Name, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:    token,
		Employee: *usecase.ToEmployeeResponse(employee),
	}, nil
}
