package entity

import "time"

// Client cliente de la farmacia. Folder es el código de la carpeta física donde
// se archivan las notas de fiado.
type Client struct {
	ID         string
	Name       string
	Address    string
	Phone      string
	CPF        string
	RG         string
	FolderCode string
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
