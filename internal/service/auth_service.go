package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasteleria/internal/config"
	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenAcceso  = "access"
	tokenRefresh = "refresh"
	bcryptCost   = 12
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, filtro scope.Filtro) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uuid.UUID) error
}

type authService struct {
	repo      repository.UsuarioRepository
	auditoria AuditoriaService
	cfg       *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, auditoria AuditoriaService, cfg *config.Config) AuthService {
	return &authService{repo: repo, auditoria: auditoria, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	if _, ok := scope.ParseRol(user.Rol); !ok {
		return nil, ErrCredenciales
	}
	return s.emitir(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}
	if typ, _ := claims["typ"].(string); typ != tokenRefresh {
		return nil, ErrTokenInvalido
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrTokenInvalido
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrTokenInvalido
	}

	user, err := s.repo.FindByID(ctx, scope.Todos(), uid)
	if err != nil || !user.Activo {
		return nil, ErrTokenInvalido
	}
	return s.emitir(user)
}

// ── Usuarios ──────────────────────────────────────────────────────────────────
// Admins manage users of their own tenant. Only a superadmin may create
// another superadmin or pick the tenant of a new user.

func (s *authService) CrearUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rol, ok := scope.ParseRol(req.Rol)
	if !ok {
		return nil, nuevaValidacion("rol", "rol desconocido")
	}
	esSuper := actor != nil && actor.Rol == scope.RolSuperAdmin
	if rol == scope.RolSuperAdmin && !esSuper {
		return nil, ErrForbidden
	}

	var tenantID *uuid.UUID
	if rol != scope.RolSuperAdmin {
		id, ok := filtro.TenantParaCrear()
		if esSuper && req.TenantID != nil {
			parsed, err := uuid.Parse(*req.TenantID)
			if err != nil {
				return nil, nuevaValidacion("tenant_id", "uuid invalido")
			}
			id, ok = parsed, true
		}
		if !ok {
			return nil, nuevaValidacion("tenant_id", "requerido")
		}
		tenantID = &id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		TenantID:     tenantID,
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          string(rol),
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: usuario %s: %v", ErrConflict, req.Username, err)
	}

	s.auditar(ctx, actor, user, model.AccionCreate, map[string]any{"username": user.Username, "rol": user.Rol})
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, filtro scope.Filtro) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, filtro, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	esSuper := actor != nil && actor.Rol == scope.RolSuperAdmin
	if user.Rol == string(scope.RolSuperAdmin) && !esSuper {
		return nil, ErrForbidden
	}

	var campos []string
	if req.Nombre != "" {
		user.Nombre = req.Nombre
		campos = append(campos, "nombre")
	}
	if req.Email != nil {
		user.Email = req.Email
		campos = append(campos, "email")
	}
	if req.Rol != "" {
		rol, ok := scope.ParseRol(req.Rol)
		if !ok {
			return nil, nuevaValidacion("rol", "rol desconocido")
		}
		if rol == scope.RolSuperAdmin && !esSuper {
			return nil, ErrForbidden
		}
		user.Rol = string(rol)
		campos = append(campos, "rol")
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		campos = append(campos, "password")
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditar(ctx, actor, user, model.AccionUpdate, map[string]any{"campos": campos})
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uuid.UUID) error {
	if actor != nil && actor.UsuarioID == id {
		return fmt.Errorf("%w: no puede desactivarse a si mismo", ErrConflict)
	}
	user, err := s.repo.FindByID(ctx, filtro, id)
	if err != nil {
		return mapNotFound(err)
	}
	n, err := s.repo.SoftDelete(ctx, filtro, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.auditar(ctx, actor, user, model.AccionDelete, map[string]any{"username": user.Username})
	return nil
}

func (s *authService) auditar(ctx context.Context, actor *scope.Identidad, user *model.Usuario, accion string, meta map[string]any) {
	if s.auditoria == nil {
		return
	}
	s.auditoria.Registrar(ctx, EntradaAuditoria{
		TenantID:  user.TenantID,
		Entidad:   model.EntidadUsuario,
		EntidadID: user.ID.String(),
		Accion:    accion,
		UsuarioID: actorID(actor),
		Metadata:  meta,
	})
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, tokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, tokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUsuarioResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, typ string, duration time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", errors.New("auth: JWT_SECRET no configurado")
	}
	tenant := ""
	if user.TenantID != nil {
		tenant = user.TenantID.String()
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"username":  user.Username,
		"rol":       user.Rol,
		"tenant_id": tenant,
		"typ":       typ,
		"exp":       now.Add(duration).Unix(),
		"iat":       now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      u.Rol,
		TenantID: uuidStr(u.TenantID),
		Activo:   u.Activo,
	}
}
