package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
)

// ListFilter paginación y búsqueda acotada a una columna.
// Field se valida contra la lista blanca de cada repositorio.
type ListFilter struct {
	Limit   int
	Offset  int
	Field   string
	Query   string
	Deleted bool // true lista los borrados lógicamente
}

// MovementFilter filtros del libro de movimientos.
type MovementFilter struct {
	ListFilter
	Code       *int64
	ClientID   string
	EmployeeID string
	Paid       *bool
	From       *time.Time
	To         *time.Time
}

// SaleFilter filtros sobre las cabeceras agregadas.
type SaleFilter struct {
	Limit    int
	Offset   int
	ClientID string
	Paid     *bool
	From     *time.Time
	To       *time.Time
}

// FieldKind tipo de columna buscable; define cómo se compara q.
type FieldKind int

const (
	FieldText   FieldKind = iota // ILIKE %q% sin acentos
	FieldNumber                  // igualdad numérica
	FieldBool                    // igualdad booleana
)

// SearchFields lista blanca de columnas buscables de una entidad.
type SearchFields struct {
	Default string
	Kinds   map[string]FieldKind
}

// Resolve valida field (vacío = Default) y devuelve la columna y su tipo.
func (s SearchFields) Resolve(field string) (string, FieldKind, error) {
	if field == "" {
		field = s.Default
	}
	kind, ok := s.Kinds[field]
	if !ok {
		return "", 0, fmt.Errorf("%w: no se puede buscar por %q", domain.ErrInvalidInput, field)
	}
	return field, kind, nil
}

// Columnas buscables por entidad.
var (
	ClientSearch = SearchFields{Default: "name", Kinds: map[string]FieldKind{
		"name": FieldText, "address": FieldText, "phone": FieldText,
		"cpf": FieldText, "rg": FieldText, "folder_code": FieldText,
	}}
	EmployeeSearch = SearchFields{Default: "name", Kinds: map[string]FieldKind{
		"name": FieldText,
	}}
	ProductSearch = SearchFields{Default: "description", Kinds: map[string]FieldKind{
		"description": FieldText, "barcode": FieldText, "generic": FieldBool,
		"sale_price": FieldNumber, "purchase_price": FieldNumber,
	}}
	MovementSearch = SearchFields{Default: "product_description", Kinds: map[string]FieldKind{
		"product_description": FieldText, "product_barcode": FieldText,
		"client_name": FieldText, "employee_name": FieldText, "payment_type": FieldText,
		"code": FieldNumber, "total": FieldNumber,
	}}
	BalanceSearch = SearchFields{Default: "client_name", Kinds: map[string]FieldKind{
		"client_name": FieldText, "folder_code": FieldText,
	}}
)

// Parse convierte el texto de búsqueda al tipo de la columna.
func (k FieldKind) Parse(q string) (interface{}, error) {
	q = strings.TrimSpace(q)
	switch k {
	case FieldNumber:
		n, err := decimal.NewFromString(strings.Replace(q, ",", ".", 1))
		if err != nil {
			return nil, fmt.Errorf("%w: %q no es un número", domain.ErrInvalidInput, q)
		}
		return n, nil
	case FieldBool:
		b, err := strconv.ParseBool(q)
		if err != nil {
			return nil, fmt.Errorf("%w: %q no es booleano", domain.ErrInvalidInput, q)
		}
		return b, nil
	}
	return q, nil
}
