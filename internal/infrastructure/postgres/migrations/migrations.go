// Package migrations crea el esquema de la farmacia. Los scripts son
// idempotentes (IF NOT EXISTS) y se aplican en orden de nombre al arrancar
// cuando DB_AUTO_MIGRATE está activo.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var files embed.FS

// Names scripts embebidos en orden de aplicación.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply ejecuta cada script en su propia sentencia y devuelve los aplicados.
func Apply(ctx context.Context, db *sql.DB) ([]string, error) {
	names, err := Names()
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	applied := make([]string, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("aplicar %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}
