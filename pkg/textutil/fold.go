// Package textutil normaliza texto para búsquedas y comparaciones.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita acentos y diacríticos: "Farmácia São João" -> "Farmacia Sao Joao".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ContainsFold búsqueda sin distinguir mayúsculas ni acentos.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(Fold(haystack)), strings.ToLower(Fold(needle)))
}
