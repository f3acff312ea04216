package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. Descripción, código de
// barras, genérico y precio de venta se propagan al libro al actualizar.
type ProductUseCase struct {
	repo repository.ProductRepository
	tx   ports.TxRunner
	log  *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, tx ports.TxRunner, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, tx: tx, log: log.Named("produtos")}
}

func validatePrices(purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() || sale.IsNegative() {
		return fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: descripción requerida", domain.ErrInvalidInput)
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	barcode := strings.TrimSpace(in.Barcode)
	if barcode != "" {
		existing, err := uc.repo.GetByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: código de barras %s ya registrado", domain.ErrDuplicate, barcode)
		}
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Description:   description,
		Barcode:       barcode,
		PurchasePrice: in.PurchasePrice.Round(2),
		SalePrice:     in.SalePrice.Round(2),
		Generic:       in.Generic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByBarcode busca un producto activo por código de barras (pantalla de venta).
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con paginación y búsqueda.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ListQuery) (*dto.ProductListResponse, error) {
	f := ToListFilter(q)
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Update actualiza un producto y propaga el cambio a las filas del libro.
// Un nuevo precio de venta sólo alcanza a las filas no pagadas.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var out *entity.Product
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		before := *product
		if in.Description != nil {
			description := strings.TrimSpace(*in.Description)
			if description == "" {
				return fmt.Errorf("%w: descripción requerida", domain.ErrInvalidInput)
			}
			product.Description = description
		}
		if in.Barcode != nil {
			barcode := strings.TrimSpace(*in.Barcode)
			if barcode != "" && barcode != product.Barcode {
				other, err := r.Products.GetByBarcode(ctx, barcode)
				if err != nil {
					return err
				}
				if other != nil && other.ID != product.ID {
					return fmt.Errorf("%w: código de barras %s ya registrado", domain.ErrDuplicate, barcode)
				}
			}
			product.Barcode = barcode
		}
		if in.PurchasePrice != nil {
			product.PurchasePrice = in.PurchasePrice.Round(2)
		}
		if in.SalePrice != nil {
			product.SalePrice = in.SalePrice.Round(2)
		}
		if in.Generic != nil {
			product.Generic = *in.Generic
		}
		if err := validatePrices(product.PurchasePrice, product.SalePrice); err != nil {
			return err
		}
		product.UpdatedAt = time.Now()
		if err := r.Products.Update(ctx, product); err != nil {
			return err
		}
		if product.Description != before.Description || product.Barcode != before.Barcode ||
			product.Generic != before.Generic || !product.SalePrice.Equal(before.SalePrice) {
			n, err := r.Movements.CascadeProduct(ctx, product, product.UpdatedAt)
			if err != nil {
				return fmt.Errorf("cascada producto: %w", err)
			}
			uc.log.Info().Str("product_id", product.ID).Int64("rows", n).Msg("producto propagado al libro")
		}
		out = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(out), nil
}

// Delete borrado lógico.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.SetDeleted(ctx, id, true, time.Now())
}

// Restore deshace el borrado lógico.
func (uc *ProductUseCase) Restore(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if err := uc.repo.SetDeleted(ctx, id, false, time.Now()); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}
