package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ClientUseCase cadastro de clientes. Un cambio de nombre se propaga a las
// filas del libro en la misma transacción.
type ClientUseCase struct {
	repo repository.ClientRepository
	tx   ports.TxRunner
	log  *logger.Logger
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, tx ports.TxRunner, log *logger.Logger) *ClientUseCase {
	return &ClientUseCase{repo: repo, tx: tx, log: log.Named("clientes")}
}

// Create valida y persiste un cliente.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	cpf := strings.TrimSpace(in.CPF)
	if cpf != "" {
		existing, err := uc.repo.GetByCPF(ctx, cpf)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: cpf %s ya registrado", domain.ErrDuplicate, cpf)
		}
	}
	now := time.Now()
	client := &entity.Client{
		ID:         uuid.New().String(),
		Name:       name,
		Address:    strings.TrimSpace(in.Address),
		Phone:      strings.TrimSpace(in.Phone),
		CPF:        cpf,
		RG:         strings.TrimSpace(in.RG),
		FolderCode: strings.TrimSpace(in.FolderCode),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// GetByID obtiene un cliente; (nil, nil) si no existe.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// List lista clientes con paginación y búsqueda por columna.
func (uc *ClientUseCase) List(ctx context.Context, q dto.ListQuery) (*dto.ClientListResponse, error) {
	f := ToListFilter(q)
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToClientResponse(c))
	}
	return &dto.ClientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Update aplica los campos enviados. Si cambia el nombre, se actualiza
// client_name en todas las filas del cliente.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	var out *entity.Client
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		client, err := r.Clients.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrNotFound
		}
		renamed := false
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
			}
			renamed = name != client.Name
			client.Name = name
		}
		if in.Address != nil {
			client.Address = strings.TrimSpace(*in.Address)
		}
		if in.Phone != nil {
			client.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.CPF != nil {
			cpf := strings.TrimSpace(*in.CPF)
			if cpf != "" && cpf != client.CPF {
				other, err := r.Clients.GetByCPF(ctx, cpf)
				if err != nil {
					return err
				}
				if other != nil && other.ID != client.ID {
					return fmt.Errorf("%w: cpf %s ya registrado", domain.ErrDuplicate, cpf)
				}
			}
			client.CPF = cpf
		}
		if in.RG != nil {
			client.RG = strings.TrimSpace(*in.RG)
		}
		if in.FolderCode != nil {
			client.FolderCode = strings.TrimSpace(*in.FolderCode)
		}
		client.UpdatedAt = time.Now()
		if err := r.Clients.Update(ctx, client); err != nil {
			return err
		}
		if renamed {
			n, err := r.Movements.CascadeClientName(ctx, client.ID, client.Name, client.UpdatedAt)
			if err != nil {
				return fmt.Errorf("cascada nombre cliente: %w", err)
			}
			uc.log.Info().Str("client_id", client.ID).Int64("rows", n).Msg("nombre de cliente propagado al libro")
		}
		out = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToClientResponse(out), nil
}

// Delete borrado lógico; el cliente sigue referenciado por sus filas.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.SetDeleted(ctx, id, true, time.Now())
}

// Restore deshace el borrado lógico.
func (uc *ClientUseCase) Restore(ctx context.Context, id string) (*dto.ClientResponse, error) {
	if err := uc.repo.SetDeleted(ctx, id, false, time.Now()); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}
