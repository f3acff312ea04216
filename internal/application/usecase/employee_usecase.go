package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// EmployeeUseCase cadastro de funcionarios.
type EmployeeUseCase struct {
	repo repository.EmployeeRepository
	tx   ports.TxRunner
	log  *logger.Logger
}

// NewEmployeeUseCase construye el caso de uso.
func NewEmployeeUseCase(repo repository.EmployeeRepository, tx ports.TxRunner, log *logger.Logger) *EmployeeUseCase {
	return &EmployeeUseCase{repo: repo, tx: tx, log: log.Named("funcionarios")}
}

// HashPIN valida el PIN (4 a 12 dígitos) y devuelve su hash bcrypt.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 || len(pin) > 12 {
		return "", fmt.Errorf("%w: el PIN debe tener entre 4 y 12 dígitos", domain.ErrInvalidInput)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return "", fmt.Errorf("%w: el PIN sólo admite dígitos", domain.ErrInvalidInput)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(hash), nil
}

// Create valida y persiste un funcionario.
func (uc *EmployeeUseCase) Create(ctx context.Context, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	employee := &entity.Employee{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.PIN != "" {
		hash, err := HashPIN(in.PIN)
		if err != nil {
			return nil, err
		}
		employee.PINHash = hash
	}
	if err := uc.repo.Create(ctx, employee); err != nil {
		return nil, err
	}
	return ToEmployeeResponse(employee), nil
}

// GetByID obtiene un funcionario; (nil, nil) si no existe.
func (uc *EmployeeUseCase) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	employee, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToEmployeeResponse(employee), nil
}

// List lista funcionarios.
func (uc *EmployeeUseCase) List(ctx context.Context, q dto.ListQuery) (*dto.EmployeeListResponse, error) {
	f := ToListFilter(q)
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *ToEmployeeResponse(e))
	}
	return &dto.EmployeeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Update cambia nombre y/o PIN. Un PIN vacío quita el acceso por PIN.
func (uc *EmployeeUseCase) Update(ctx context.Context, id string, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	var out *entity.Employee
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		employee, err := r.Employees.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if employee == nil {
			return domain.ErrNotFound
		}
		renamed := false
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
			}
			renamed = name != employee.Name
			employee.Name = name
		}
		if in.PIN != nil {
			employee.PINHash = ""
			if *in.PIN != "" {
				hash, err := HashPIN(*in.PIN)
				if err != nil {
					return err
				}
				employee.PINHash = hash
			}
		}
		employee.UpdatedAt = time.Now()
		if err := r.Employees.Update(ctx, employee); err != nil {
			return err
		}
		if renamed {
			n, err := r.Movements.CascadeEmployeeName(ctx, employee.ID, employee.Name, employee.UpdatedAt)
			if err != nil {
				return fmt.Errorf("cascada nombre funcionario: %w", err)
			}
			uc.log.Info().Str("employee_id", employee.ID).Int64("rows", n).Msg("nombre de funcionario propagado al libro")
		}
		out = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToEmployeeResponse(out), nil
}

// Delete borrado lógico.
func (uc *EmployeeUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.SetDeleted(ctx, id, true, time.Now())
}

// Restore deshace el borrado lógico.
func (uc *EmployeeUseCase) Restore(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	if err := uc.repo.SetDeleted(ctx, id, false, time.Now()); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}
