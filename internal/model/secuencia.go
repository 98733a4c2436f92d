package model

// Secuencia is a named counter bumped inside the transaction that consumes it.
type Secuencia struct {
	Nombre string `gorm:"type:varchar(50);primaryKey"`
	Valor  int64  `gorm:"not null;default:0"`
}

func (Secuencia) TableName() string { return "secuencias" }

const SecuenciaFolio = "folio"
