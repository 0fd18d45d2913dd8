package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalleni/support-desk/internal/domain"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

func testStaff() *domain.StaffMember {
	return &domain.StaffMember{ID: "admin", Name: "Noura", Email: "ops@dalleni.sa", Role: domain.StaffRoleAdmin}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
	assert.Equal(t, "Noura", claims.Name)
	assert.Equal(t, domain.StaffRoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.RegisteredClaims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret", 5).GenerateToken(testStaff())
	require.NoError(t, err)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret!"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
	assert.Error(t, ComparePassword("not-a-hash", "s3cret!"))
}

func TestHashPasswordFallsBackToDefaultCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func newGatedApp(tm *TokenManager, enforce bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Use(NewAuthMiddleware(tm).Handle)
	app.Get("/admin", RequireStaffRole(enforce, domain.StaffRoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString(ActorName(c))
	})
	return app
}

func TestRequireStaffRole(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	admin, _, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)
	agentStaff := testStaff()
	agentStaff.Role = domain.StaffRoleAgent
	agent, _, err := tm.GenerateToken(agentStaff)
	require.NoError(t, err)

	cases := []struct {
		name    string
		enforce bool
		header  string
		status  int
	}{
		{"open gate anonymous", false, "", http.StatusOK},
		{"enforced anonymous", true, "", http.StatusUnauthorized},
		{"enforced admin", true, "Bearer " + admin, http.StatusOK},
		{"enforced agent", true, "Bearer " + agent, http.StatusForbidden},
		{"garbage token", false, "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", true, "Basic abc", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := newGatedApp(tm, tc.enforce).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
