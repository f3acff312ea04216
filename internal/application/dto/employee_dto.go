package dto

import "time"

// CreateEmployeeRequest body para POST /api/funcionarios. PIN opcional (login del caixa).
type CreateEmployeeRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin,omitempty"`
}

// UpdateEmployeeRequest body para PUT /api/funcionarios/:id.
type UpdateEmployeeRequest struct {
	Name *string `json:"name"`
	PIN  *string `json:"pin"`
}

// EmployeeResponse funcionario en respuestas (nunca expone el hash).
type EmployeeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HasPIN    bool      `json:"has_pin"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeListResponse lista paginada de funcionarios.
type EmployeeListResponse struct {
	Items []EmployeeResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
