package usecase

import (
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// ToListFilter normaliza la paginación y la pasa al filtro de repositorio.
func ToListFilter(q dto.ListQuery) repository.ListFilter {
	q.Normalize()
	return repository.ListFilter{
		Limit:   q.Limit,
		Offset:  q.Offset,
		Field:   q.Field,
		Query:   q.Q,
		Deleted: q.Deleted,
	}
}

// ToClientResponse mapea la entidad al DTO.
func ToClientResponse(c *entity.Client) *dto.ClientResponse {
	if c == nil {
		return nil
	}
	return &dto.ClientResponse{
		ID:         c.ID,
		Name:       c.Name,
		Address:    c.Address,
		Phone:      c.Phone,
		CPF:        c.CPF,
		RG:         c.RG,
		FolderCode: c.FolderCode,
		Deleted:    c.Deleted,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToEmployeeResponse mapea la entidad al DTO; el hash del PIN no sale.
func ToEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	if e == nil {
		return nil
	}
	return &dto.EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		HasPIN:    e.PINHash != "",
		Deleted:   e.Deleted,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToProductResponse mapea la entidad al DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Description:   p.Description,
		Barcode:       p.Barcode,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Generic:       p.Generic,
		Deleted:       p.Deleted,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToMovementResponse mapea una fila del libro al DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                 m.ID,
		Code:               m.Code,
		ProductID:          m.ProductID,
		ProductDescription: m.ProductDescription,
		ProductBarcode:     m.ProductBarcode,
		ProductGeneric:     m.ProductGeneric,
		ClientID:           m.ClientID,
		ClientName:         m.ClientName,
		EmployeeID:         m.EmployeeID,
		EmployeeName:       m.EmployeeName,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		CurrentPrice:       m.CurrentPrice,
		Discount:           m.Discount,
		Total:              m.Total,
		PaymentType:        m.PaymentType,
		Paid:               m.Paid,
		PaidAt:             m.PaidAt,
		PaidTotal:          m.PaidTotal,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToMovementResponses mapea una lista de filas.
func ToMovementResponses(rows []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToSaleResponse mapea la cabecera agregada; rows puede ser nil en listados.
func ToSaleResponse(s *entity.Sale, rows []*entity.Movement) *dto.SaleResponse {
	out := &dto.SaleResponse{
		Code:         s.Code,
		Date:         s.Date,
		ClientID:     s.ClientID,
		ClientName:   s.ClientName,
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		PaymentType:  s.PaymentType,
		Items:        s.Items,
		Gross:        s.Gross,
		Discount:     s.Discount,
		Total:        s.Total,
		Open:         s.Open,
		Paid:         s.Paid,
	}
	if rows != nil {
		out.Rows = ToMovementResponses(rows)
	}
	return out
}
