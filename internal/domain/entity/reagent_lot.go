package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades base en las que se expresa la cantidad de un lote.
const (
	UnitLiter = "L"       // volumen
	UnitGram  = "g"       // masa
	UnitCount = "unidade" // tamaño nominal no reconocido: se cuentan embalajes
)

// ReagentLot representa un lote (SKU) de reactivo en stock.
// La clave de fusión es (nombre, tamaño nominal, marca) normalizados; nunca hay dos lotes con la misma clave.
// Un lote cuya cantidad llega a cero se elimina, no se conserva en cero.
type ReagentLot struct {
	ID          int64
	Name        string
	NominalSize string          // texto ingresado, ej: "500ml"
	Brand       string
	Location    string          // ubicación física (estante, armario)
	Quantity    decimal.Decimal // total convertido a la unidad base
	Unit        string          // L, g o unidade
	Packages    int             // embalajes representados por Quantity
	Controlled  bool            // sustancia controlada
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
