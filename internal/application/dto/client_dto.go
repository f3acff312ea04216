package dto

import "time"

// CreateClientRequest body para POST /api/clientes.
type CreateClientRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	CPF        string `json:"cpf"`
	RG         string `json:"rg"`
	FolderCode string `json:"folder_code"`
}

// UpdateClientRequest body para PUT /api/clientes/:id (campos nil no cambian).
type UpdateClientRequest struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	CPF        *string `json:"cpf"`
	RG         *string `json:"rg"`
	FolderCode *string `json:"folder_code"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	CPF        string    `json:"cpf"`
	RG         string    `json:"rg"`
	FolderCode string    `json:"folder_code"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
