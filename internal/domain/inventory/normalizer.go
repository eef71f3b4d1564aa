package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize devuelve el texto sin acentos, en minúsculas y con espacios colapsados.
// Es la única función de comparación de nombres, tamaños y marcas. Idempotente.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain guarda estado: se construye por llamada para ser seguro entre goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// LotKey clave de fusión de un lote: (nombre, tamaño nominal, marca) normalizados.
type LotKey struct {
	Name  string
	Size  string
	Brand string
}

// NewLotKey normaliza los tres componentes de la clave.
func NewLotKey(name, size, brand string) LotKey {
	return LotKey{Name: Normalize(name), Size: Normalize(size), Brand: Normalize(brand)}
}

// Contains indica si haystack contiene needle comparando textos normalizados.
func Contains(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
