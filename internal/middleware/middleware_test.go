package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pasteleria/internal/apierror"
	"pasteleria/internal/scope"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func firmar(t *testing.T, claims JWTClaims, secret string) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

// protegido mounts JWTAuth and echoes the resolved filter.
func protegido(roles ...scope.Rol) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	g := r.Group("/", JWTAuth(testSecret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/yo", func(c *gin.Context) {
		f := Filtro(c)
		tenant, _ := f.TenantParaCrear()
		c.JSON(http.StatusOK, gin.H{
			"rol":    GetIdentidad(c).Rol,
			"todos":  f.EsTodos(),
			"tenant": tenant.String(),
			"user":   GetClaims(c).Username,
		})
	})
	return r
}

func get(r http.Handler, path, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_RechazaSinToken(t *testing.T) {
	w := get(protegido(), "/yo", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Detail)
}

func TestJWTAuth_RechazaRefreshToken(t *testing.T) {
	tenant := uuid.NewString()
	tok := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "admin", TenantID: tenant, Typ: "refresh"}, testSecret)
	assert.Equal(t, http.StatusUnauthorized, get(protegido(), "/yo", tok).Code)
}

func TestJWTAuth_RechazaFirmaYRolInvalidos(t *testing.T) {
	tenant := uuid.NewString()
	otraFirma := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "admin", TenantID: tenant, Typ: "access"}, "otro-secreto")
	assert.Equal(t, http.StatusUnauthorized, get(protegido(), "/yo", otraFirma).Code)

	rolDesconocido := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "cajero", TenantID: tenant, Typ: "access"}, testSecret)
	assert.Equal(t, http.StatusUnauthorized, get(protegido(), "/yo", rolDesconocido).Code)

	vencido := firmar(t, JWTClaims{
		UserID: uuid.NewString(), Rol: "admin", TenantID: tenant, Typ: "access",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}, testSecret)
	assert.Equal(t, http.StatusUnauthorized, get(protegido(), "/yo", vencido).Code)
}

func TestFiltro_OverrideSoloSuperadmin(t *testing.T) {
	propio := uuid.NewString()
	otro := uuid.NewString()

	admin := firmar(t, JWTClaims{UserID: uuid.NewString(), Username: "ana", Rol: "admin", TenantID: propio, Typ: "access"}, testSecret)
	w := get(protegido(), "/yo", admin, TenantHeader, otro)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, propio, body["tenant"])
	assert.Equal(t, "ana", body["user"])

	super := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "superadmin", Typ: "access"}, testSecret)
	w = get(protegido(), "/yo?tenant_id="+otro, super)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, otro, body["tenant"])
	assert.Equal(t, false, body["todos"])

	w = get(protegido(), "/yo", super)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["todos"])
}

func TestFiltro_OverrideMalformadoNoAmpliaElFiltro(t *testing.T) {
	super := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "superadmin", Typ: "access"}, testSecret)

	w := get(protegido(), "/yo", super, TenantHeader, "no-es-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), `"todos"`)

	w = get(protegido(), "/yo?tenant_id=123", super)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "admin", TenantID: uuid.NewString(), Typ: "access"}, testSecret)
	w = get(protegido(), "/yo", admin, TenantHeader, "no-es-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireRole(t *testing.T) {
	tenant := uuid.NewString()
	r := protegido(scope.RolSuperAdmin, scope.RolAdmin)

	empleado := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "empleado", TenantID: tenant, Typ: "access"}, testSecret)
	assert.Equal(t, http.StatusForbidden, get(r, "/yo", empleado).Code)

	admin := firmar(t, JWTClaims{UserID: uuid.NewString(), Rol: "admin", TenantID: tenant, Typ: "access"}, testSecret)
	assert.Equal(t, http.StatusOK, get(r, "/yo", admin).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = get(r, "/", "", RequestIDHeader, strings.Repeat("x", 65))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRecovery_DevuelveCorrelationID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("se cayo el horno") })

	w := get(r, "/boom", "", RequestIDHeader, "req-42")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.CorrelationID)
	assert.NotContains(t, w.Body.String(), "horno")
}

func TestErrorHandler_OcultaDetalle(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := get(r, "/err", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestIPLimiter(t *testing.T) {
	l := NewIPLimiter(0.001, 2, "Demasiadas solicitudes")
	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)

	w := get(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, 1, l.purgar(time.Now().Add(time.Second)))
	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
}
