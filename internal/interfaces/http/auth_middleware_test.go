package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/optica-core/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/optica-core/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCenterID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "optica-core-test"
)

func testSigner(t *testing.T) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, time.Hour)
	require.NoError(t, err)
	return s
}

// tokenForRole devuelve la cabecera Authorization para un usuario del centro de test con el rol dado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := testSigner(t).Generate(pkgjwt.Identity{UserID: testUserID, CenterID: testCenterID, Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

// protectedApp expone GET /protected detrás de AuthMiddleware + RequireRole(allowed...).
func protectedApp(t *testing.T, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testSigner(t)),
		apphttp.RequireRole(allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":   apphttp.GetUserID(c),
				"center_id": apphttp.GetCenterID(c),
				"role":      apphttp.GetRole(c),
			})
		},
	)
	return app
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	expiredSigner, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, -time.Minute)
	require.NoError(t, err)
	expired, err := expiredSigner.Generate(pkgjwt.Identity{UserID: testUserID, CenterID: testCenterID, Role: "admin"})
	require.NoError(t, err)

	cases := []struct {
		name     string
		allowed  []string
		header   string
		status   int
		wantCode string
	}{
		{"admin en ruta admin", []string{apphttp.RoleAdmin}, tokenForRole(t, "admin"), http.StatusOK, ""},
		{"magasinier en ruta de stock", []string{apphttp.RoleAdmin, apphttp.RoleMagasinier}, tokenForRole(t, "magasinier"), http.StatusOK, ""},
		{"caissier en ruta admin", []string{apphttp.RoleAdmin}, tokenForRole(t, "caissier"), http.StatusForbidden, "FORBIDDEN"},
		{"magasinier en ruta de caja", []string{apphttp.RoleCaissier}, tokenForRole(t, "magasinier"), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{apphttp.RoleAdmin}, tokenForRole(t, ""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin cabecera", []string{apphttp.RoleAdmin}, "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto", []string{apphttp.RoleAdmin}, "Basic abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", []string{apphttp.RoleAdmin}, "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", []string{apphttp.RoleAdmin}, "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := protectedApp(t, tc.allowed...).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.wantCode != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tc.wantCode)
			}
		})
	}
}

func TestAuthMiddleware_CargaIdentidad(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, "caissier"))
	resp, err := protectedApp(t, apphttp.RoleCaissier).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCenterID, body["center_id"])
	assert.Equal(t, "caissier", body["role"])
}
