package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both missing rows and rows outside the caller's
	// tenant scope; callers cannot tell the two apart.
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrFolioCancelado = fmt.Errorf("%w: el folio está cancelado", ErrConflict)
	ErrCorteCerrado   = fmt.Errorf("%w: el corte de caja del día está cerrado", ErrConflict)
	ErrForbidden      = errors.New("operacion no permitida")
	ErrCredenciales   = errors.New("credenciales invalidas")
	ErrTokenInvalido  = errors.New("token invalido o expirado")
)

// ValidationError lists every offending field at once.
type ValidationError struct {
	Campos map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Campos[k])
	}
	return "validacion: " + strings.Join(parts, ", ")
}

// Add records a problem for campo; the first message per field wins.
func (e *ValidationError) Add(campo, msg string) {
	if e.Campos == nil {
		e.Campos = make(map[string]string)
	}
	if _, ok := e.Campos[campo]; !ok {
		e.Campos[campo] = msg
	}
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Campos) == 0 {
		return nil
	}
	return e
}

func nuevaValidacion(campo, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(campo, msg)
	return v
}
