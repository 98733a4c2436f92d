package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizarImporte turns a user-typed amount into a 2-decimal value.
//
// Policy: coerce, then validate. Currency symbols, whitespace and thousands
// separators are stripped; an empty input means zero. Whatever remains must
// parse as a non-negative number, otherwise a ValidationError naming campo is
// returned. Garbage is never mapped to zero.
func NormalizarImporte(campo, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == '$', r == ',', r == ' ', r == ' ', r == '_':
			// stripped
		default:
			// letters and other symbols survive so the parse below rejects them
			b.WriteRune(r)
		}
	}
	limpio := b.String()
	if limpio == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(limpio)
	if err != nil {
		return decimal.Zero, nuevaValidacion(campo, "importe invalido")
	}
	if d.IsNegative() {
		return decimal.Zero, nuevaValidacion(campo, "no puede ser negativo")
	}
	return d.Round(2), nil
}

// normalizarImportes runs NormalizarImporte over several fields and merges
// the failures into one ValidationError.
func normalizarImportes(v *ValidationError, campos map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(campos))
	for campo, raw := range campos {
		d, err := NormalizarImporte(campo, raw)
		if err != nil {
			v.Add(campo, "importe invalido")
			continue
		}
		out[campo] = d
	}
	return out
}
