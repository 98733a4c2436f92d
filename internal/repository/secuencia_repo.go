package repository

import (
	"context"
	"fmt"

	"pasteleria/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SecuenciaRepository interface {
	// Siguiente bumps the named counter and returns the new value. Must run
	// inside the transaction that consumes the number: on Postgres the UPDATE
	// holds the row lock until commit.
	Siguiente(ctx context.Context, tx *gorm.DB, nombre string) (int64, error)
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository { return &secuenciaRepo{db: db} }

func (r *secuenciaRepo) Siguiente(ctx context.Context, tx *gorm.DB, nombre string) (int64, error) {
	q := conn(ctx, r.db, tx)

	bump := func() (int64, error) {
		res := q.Model(&model.Secuencia{}).
			Where("nombre = ?", nombre).
			Update("valor", gorm.Expr("valor + 1"))
		return res.RowsAffected, res.Error
	}

	n, err := bump()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		seed := model.Secuencia{Nombre: nombre, Valor: 0}
		if err := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
		if n, err = bump(); err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("secuencia %q no disponible", nombre)
		}
	}

	var s model.Secuencia
	if err := q.Where("nombre = ?", nombre).First(&s).Error; err != nil {
		return 0, err
	}
	return s.Valor, nil
}
