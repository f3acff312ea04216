package entity

import "time"

// Employee funcionario que opera el caixa.
type Employee struct {
	ID        string
	Name      string
	PINHash   string // bcrypt; vacío = sin acceso por PIN
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
