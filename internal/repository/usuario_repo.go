package repository

import (
	"context"

	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, filtro scope.Filtro, id uuid.UUID) (*model.Usuario, error)
	List(ctx context.Context, filtro scope.Filtro) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	SoftDelete(ctx context.Context, filtro scope.Filtro, id uuid.UUID) (int64, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	// Accept login by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND activo = ?", username, username, true).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, filtro scope.Filtro, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Scopes(filtro.Aplicar).Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *usuarioRepo) List(ctx context.Context, filtro scope.Filtro) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Scopes(filtro.Aplicar).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *usuarioRepo) SoftDelete(ctx context.Context, filtro scope.Filtro, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Scopes(filtro.Aplicar).
		Where("id = ?", id).
		Update("activo", false)
	return res.RowsAffected, res.Error
}
