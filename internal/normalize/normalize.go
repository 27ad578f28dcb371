// Package normalize turns raw CMED extract tokens into typed values.
// Nothing here returns an error: unparseable input becomes "absent" (nil) so a bad
// cell never fails the whole row.
package normalize

import (
	"strings"

	"precomed/internal/model"

	"github.com/shopspring/decimal"
)

// emptyMarkers are the placeholders the extract uses for "no price".
var emptyMarkers = map[string]bool{
	"":           true,
	"-":          true,
	"    -     ": true,
}

// Decimal parses a pt-BR formatted number ("1.234,56", "1234,56", "10,5").
// Blank cells, dashes and garbage yield nil.
func Decimal(raw string) *decimal.Decimal {
	if emptyMarkers[raw] {
		return nil
	}
	v := strings.TrimSpace(raw)
	if emptyMarkers[v] {
		return nil
	}
	if strings.Contains(v, ",") {
		// decimal comma present: dots are thousands separators
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}

// Opcional trims raw and returns nil when nothing is left.
func Opcional(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}

// SimNao maps "SIM" (any case) to Sim and everything else to Não.
func SimNao(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "SIM") {
		return model.Sim
	}
	return model.Nao
}

// Confaz normalizes the CONFAZ 87 flag. The extract sometimes carries the agreement
// reference ("Confaz 87/02") instead of a plain "Sim".
func Confaz(raw string) string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "SIM" || strings.Contains(v, "CONFAZ") {
		return model.Sim
	}
	return model.Nao
}

// RestricaoHospitalar keeps the three canonical values and falls back to
// "Não especificado" for anything else.
func RestricaoHospitalar(raw string) string {
	v := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(v, "SIM"):
		return model.Sim
	case strings.EqualFold(v, model.Nao):
		return model.Nao
	case strings.EqualFold(v, model.NaoEspecificado):
		return model.NaoEspecificado
	}
	return model.NaoEspecificado
}

// ClasseTerapeutica splits "A1B - ANTIÁCIDOS" into code and description. Without the
// delimiter the whole value is used for both.
func ClasseTerapeutica(raw string) (codigo, descricao string) {
	v := strings.TrimSpace(raw)
	partes := strings.SplitN(v, " - ", 2)
	if len(partes) == 2 {
		return partes[0], partes[1]
	}
	return v, v
}
