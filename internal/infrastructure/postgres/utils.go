package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// where acumula condiciones y argumentos posicionales.
type where struct {
	conds []string
	args  []any
}

// add agrega una condición; "?" se reemplaza por el siguiente $n.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next posición del próximo argumento (para LIMIT/OFFSET).
func (w *where) next() int { return len(w.args) + 1 }

// search agrega la búsqueda por columna. columns mapea el nombre expuesto a la
// expresión SQL; el nombre ya fue validado contra la lista blanca.
func (w *where) search(fields repository.SearchFields, f repository.ListFilter, columns map[string]string) error {
	if f.Query == "" {
		return nil
	}
	field, kind, err := fields.Resolve(f.Field)
	if err != nil {
		return err
	}
	value, err := kind.Parse(f.Query)
	if err != nil {
		return err
	}
	col, ok := columns[field]
	if !ok {
		col = field
	}
	switch kind {
	case repository.FieldText:
		w.add(fmt.Sprintf("unaccent(%s) ILIKE '%%' || unaccent(?) || '%%'", col), escapeLike(value.(string)))
	default:
		w.add(col+" = ?", value)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
