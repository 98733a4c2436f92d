package model

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Usuario{},
		&Cliente{},
		&CatalogoItem{},
		&Secuencia{},
		&Folio{},
		&Comision{},
		&CorteCaja{},
		&MovimientoCaja{},
		&Auditoria{},
		&EventoOutbox{},
	}
}
