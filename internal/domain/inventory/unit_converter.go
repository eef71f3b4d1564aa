package inventory

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
)

// QuantityScale decimales con que se guardan las cantidades en unidad base (columnas NUMERIC(30, 12)).
const QuantityScale = 12

// RoundQuantity redondea a QuantityScale para que todos los almacenes guarden el mismo valor.
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(QuantityScale)
}

// nominalSizePattern: número inicial (separador . o ,) y la primera palabra alfabética que le sigue.
var nominalSizePattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([\p{L}µμ]*)`)

type unitFactor struct {
	base   string
	factor decimal.Decimal
}

// Búsqueda exacta por token: "ml" nunca se confunde con "l".
var unitTable = map[string]unitFactor{
	"ul":     {entity.UnitLiter, decimal.New(1, -6)},
	"µl":     {entity.UnitLiter, decimal.New(1, -6)},
	"μl":     {entity.UnitLiter, decimal.New(1, -6)},
	"ml":     {entity.UnitLiter, decimal.New(1, -3)},
	"cl":     {entity.UnitLiter, decimal.New(1, -2)},
	"dl":     {entity.UnitLiter, decimal.New(1, -1)},
	"l":      {entity.UnitLiter, decimal.New(1, 0)},
	"lt":     {entity.UnitLiter, decimal.New(1, 0)},
	"litro":  {entity.UnitLiter, decimal.New(1, 0)},
	"litros": {entity.UnitLiter, decimal.New(1, 0)},
	"ug":     {entity.UnitGram, decimal.New(1, -6)},
	"µg":     {entity.UnitGram, decimal.New(1, -6)},
	"μg":     {entity.UnitGram, decimal.New(1, -6)},
	"mg":     {entity.UnitGram, decimal.New(1, -3)},
	"g":      {entity.UnitGram, decimal.New(1, 0)},
	"gr":     {entity.UnitGram, decimal.New(1, 0)},
	"grama":  {entity.UnitGram, decimal.New(1, 0)},
	"gramas": {entity.UnitGram, decimal.New(1, 0)},
	"kg":     {entity.UnitGram, decimal.New(1, 3)},
	"kilo":   {entity.UnitGram, decimal.New(1, 3)},
	"kilos":  {entity.UnitGram, decimal.New(1, 3)},
}

// NominalSize resultado de interpretar un tamaño nominal ("500ml").
type NominalSize struct {
	Value  decimal.Decimal // número tal como se escribió
	Token  string          // unidad escrita, en minúsculas
	Unit   string          // unidad base: L, g o unidade
	Factor decimal.Decimal // multiplicador hacia la unidad base
}

// ParseNominalSize interpreta el tamaño nominal. ok=false si no hay número o la unidad no se reconoce.
func ParseNominalSize(text string) (NominalSize, bool) {
	m := nominalSizePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return NominalSize{}, false
	}
	value, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return NominalSize{}, false
	}
	token := m[2]
	uf, ok := unitTable[token]
	if !ok {
		return NominalSize{}, false
	}
	return NominalSize{Value: value, Token: token, Unit: uf.base, Factor: uf.factor}, true
}

// Convert calcula la cantidad total de packages embalajes de tamaño nominalSize en unidad base (L o g).
// Si el tamaño no se puede interpretar devuelve (packages, "unidade"): nunca falla.
func Convert(nominalSize string, packages int) (decimal.Decimal, string) {
	count := decimal.NewFromInt(int64(packages))
	if packages < 0 {
		return count, entity.UnitCount
	}
	ns, ok := ParseNominalSize(nominalSize)
	if !ok {
		return count, entity.UnitCount
	}
	return RoundQuantity(ns.Value.Mul(ns.Factor).Mul(count)), ns.Unit
}

// PerPackage cantidad en unidad base de un solo embalaje.
func PerPackage(nominalSize string) (decimal.Decimal, string) {
	return Convert(nominalSize, 1)
}

// PackagesFor número de embalajes (redondeado hacia arriba) que representa quantity.
// Un embalaje abierto cuenta como embalaje.
func PackagesFor(nominalSize string, quantity decimal.Decimal) int {
	per, _ := PerPackage(nominalSize)
	if !per.IsPositive() || !quantity.IsPositive() {
		return 0
	}
	return int(quantity.Div(per).Ceil().IntPart())
}
