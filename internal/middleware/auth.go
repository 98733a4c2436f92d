package middleware

import (
	"net/http"
	"strings"

	"pasteleria/internal/apierror"
	"pasteleria/internal/scope"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey    = "claims"
	IdentidadKey = "identidad"
	OverrideKey  = "tenant_override"

	// TenantHeader lets a superadmin narrow a request to one tenant.
	TenantHeader = "X-Tenant-ID"
)

// JWTClaims are the custom claims embedded in every token.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	TenantID string `json:"tenant_id"`
	Typ      string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer access token on every protected route and
// stores the parsed identity. Refresh tokens and unknown roles are rejected.
// A malformed tenant override is a 400, never a silently wider filter.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.Typ == "refresh" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		id, ok := identidadDe(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		override, err := tenantOverride(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("tenant_id invalido: se espera un UUID"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(IdentidadKey, id)
		if override != nil {
			c.Set(OverrideKey, override)
		}
		c.Next()
	}
}

func identidadDe(claims *JWTClaims) (*scope.Identidad, bool) {
	rol, ok := scope.ParseRol(claims.Rol)
	if !ok {
		return nil, false
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, false
	}
	id := &scope.Identidad{UsuarioID: uid, Rol: rol}
	if claims.TenantID != "" {
		tid, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return nil, false
		}
		id.TenantID = &tid
	}
	return id, true
}

// RequireRole rejects requests whose role is not in the allowed list.
func RequireRole(roles ...scope.Rol) gin.HandlerFunc {
	allowed := make(map[scope.Rol]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		id := GetIdentidad(c)
		if id == nil || !allowed[id.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.Get(ClaimsKey)
	typed, _ := claims.(*JWTClaims)
	return typed
}

// GetIdentidad returns the identity set by JWTAuth, or nil.
func GetIdentidad(c *gin.Context) *scope.Identidad {
	v, _ := c.Get(IdentidadKey)
	id, _ := v.(*scope.Identidad)
	return id
}

// Filtro resolves the tenant filter for the request. The override comes from
// the X-Tenant-ID header or the tenant_id query parameter and only counts for
// a superadmin.
func Filtro(c *gin.Context) scope.Filtro {
	v, _ := c.Get(OverrideKey)
	override, _ := v.(*uuid.UUID)
	return scope.Resolver(GetIdentidad(c), override)
}

func tenantOverride(c *gin.Context) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.GetHeader(TenantHeader))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("tenant_id"))
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
