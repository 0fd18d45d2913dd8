package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalleni/support-desk/internal/ai"
	"github.com/dalleni/support-desk/internal/api/dto"
	"github.com/dalleni/support-desk/internal/api/http/handlers"
	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/observability"
	"github.com/dalleni/support-desk/internal/ratelimit"
	"github.com/dalleni/support-desk/internal/repository"
	"github.com/dalleni/support-desk/internal/service"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

type stubGenerator struct {
	err error
}

func (s *stubGenerator) Generate(_ context.Context, req ai.Request) (*domain.AISolution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AISolution{
		Explanation:       "Renew through Absher",
		ExplanationAr:     "جدد عبر أبشر",
		Steps:             []domain.LocalizedText{{En: "Log in", Ar: "سجل الدخول"}},
		CanBeSolvedOnline: req.ServiceType != domain.ServiceOther,
	}, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testEnv struct {
	app       *fiber.App
	generator *stubGenerator
}

const adminPassword = "let-me-in"

func newTestEnv(t *testing.T, requireStaff bool) *testEnv {
	t.Helper()
	return newTestEnvWithLimiter(t, requireStaff, ratelimit.NewLimiter(nil, "test", nil))
}

func newTestEnvWithLimiter(t *testing.T, requireStaff bool, limiter *ratelimit.Limiter) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	generator := &stubGenerator{}
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("test-secret", 5)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:        store.Tickets(),
		Generator:         generator,
		Metrics:           metrics,
		GenerationTimeout: time.Second,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  store.Tickets(),
		CommentRepo: store.Comments(),
	})
	authService := service.NewAuthService(config.AuthConfig{
		AdminEmail:        "ops@dalleni.sa",
		AdminName:         "Operations",
		AdminPasswordHash: string(hash),
	}, tokens)

	app := NewApp(ServerConfig{AppName: "test", Metrics: metrics, RequestTimeout: 5 * time.Second}, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", map[string]handlers.Pinger{}),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService, requireStaff),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		RequireStaff:   requireStaff,
		Limiter:        limiter,
		RateLimit:      config.RateLimitConfig{Enabled: true, WindowSeconds: 60, CreateLimit: 1, GenerateLimit: 1},
		Metrics:        metrics,
	})
	return &testEnv{app: app, generator: generator}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (e *testEnv) createTicket(t *testing.T) dto.TicketResponse {
	t.Helper()
	resp, env := e.do(t, http.MethodPost, "/api/tickets", map[string]any{
		"serviceType":      "iqama",
		"issueDescription": "My iqama renewal is stuck",
		"userEmail":        "Citizen@Example.com",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ticket dto.TicketResponse
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	return ticket
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestCreateAndFetchTicket(t *testing.T) {
	env := newTestEnv(t, false)
	created := env.createTicket(t)

	assert.Equal(t, domain.TicketStatusNew, created.Status)
	assert.Equal(t, "citizen@example.com", created.UserEmail)
	require.Len(t, created.Timeline, 1)
	assert.Equal(t, "Ticket created", created.Timeline[0].Action)

	resp, body := env.do(t, http.MethodGet, "/api/tickets/"+created.TicketNumber, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.TicketResponse](t, body).ID)

	resp, body = env.do(t, http.MethodGet, "/api/tickets/id/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.TicketNumber, decode[dto.TicketResponse](t, body).TicketNumber)

	resp, body = env.do(t, http.MethodGet, "/api/tickets/user/CITIZEN@example.com", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TicketResponse](t, body), 1)
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t, false)
	resp, body := env.do(t, http.MethodPost, "/api/tickets", map[string]any{
		"serviceType":      "passport",
		"issueDescription": "",
		"userEmail":        "nope",
	}, "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.CodeValidation, body.Error.Code)
	assert.Contains(t, body.Error.Details, "serviceType")
	assert.Contains(t, body.Error.Details, "issueDescription")
	assert.Contains(t, body.Error.Details, "userEmail")
}

func TestUnknownTicketIsNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	resp, body := env.do(t, http.MethodGet, "/api/tickets/DLN-NOPE-0000", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
}

func TestStatusNotesAndStats(t *testing.T) {
	env := newTestEnv(t, false)
	created := env.createTicket(t)

	resp, body := env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/status", map[string]string{"status": "IN_REVIEW"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.TicketResponse](t, body)
	assert.Equal(t, domain.TicketStatusInReview, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "تم تغيير الحالة إلى قيد المراجعة", updated.Timeline[1].ActionAr)

	resp, body = env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/status", map[string]string{"status": "CLOSED"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, body.Error.Code)

	resp, _ = env.do(t, http.MethodPut, "/api/tickets/missing/status", map[string]string{"status": "NEW"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/admin-notes", map[string]string{"adminNotes": "needs Muqeem check"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	noted := decode[dto.TicketResponse](t, body)
	require.NotNil(t, noted.AdminNotes)
	assert.Equal(t, "needs Muqeem check", *noted.AdminNotes)
	assert.Len(t, noted.Timeline, 2)

	resp, body = env.do(t, http.MethodGet, "/api/tickets/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.TicketStatsResponse](t, body)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.TicketStatusInReview])

	resp, body = env.do(t, http.MethodGet, "/api/tickets?status=in_review", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TicketResponse](t, body), 1)
}

func TestGenerateSolution(t *testing.T) {
	env := newTestEnv(t, false)
	created := env.createTicket(t)

	resp, body := env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/ai-solution", map[string]string{"language": "en"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.TicketResponse](t, body)
	require.NotNil(t, updated.AISolution)
	assert.Equal(t, "جدد عبر أبشر", updated.AISolution.ExplanationAr)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "AI analysis completed", updated.Timeline[1].Action)
}

func TestGenerateSolutionFailure(t *testing.T) {
	env := newTestEnv(t, false)
	created := env.createTicket(t)
	env.generator.err = errors.New("model unavailable")

	resp, body := env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/ai-solution", nil, "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, apperrors.CodeGeneration, body.Error.Code)
	assert.Equal(t, true, body.Error.Details["retryable"])

	_, body = env.do(t, http.MethodGet, "/api/tickets/id/"+created.ID, nil, "")
	ticket := decode[dto.TicketResponse](t, body)
	assert.Nil(t, ticket.AISolution)
	assert.Len(t, ticket.Timeline, 1)
}

func TestCommentsAndDelete(t *testing.T) {
	env := newTestEnv(t, false)
	created := env.createTicket(t)

	resp, body := env.do(t, http.MethodPost, "/api/tickets/"+created.ID+"/comments", map[string]any{
		"content":        "We contacted Jawazat",
		"isAdminComment": true,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comment := decode[dto.CommentResponse](t, body)
	assert.Equal(t, "Admin", comment.AuthorName)

	resp, body = env.do(t, http.MethodPost, "/api/tickets/"+created.ID+"/comments", map[string]any{"content": "  "}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, body.Error.Code)

	resp, body = env.do(t, http.MethodGet, "/api/tickets/"+created.ID+"/comments", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.CommentResponse](t, body), 1)

	resp, _ = env.do(t, http.MethodDelete, "/api/tickets/"+created.ID, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/tickets/"+created.ID+"/comments", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.CommentResponse](t, body))

	resp, _ = env.do(t, http.MethodDelete, "/api/tickets/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaffGateWhenEnforced(t *testing.T) {
	env := newTestEnv(t, true)
	created := env.createTicket(t)

	resp, body := env.do(t, http.MethodGet, "/api/tickets", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeUnauthorized, body.Error.Code)

	resp, _ = env.do(t, http.MethodPost, "/api/tickets/"+created.ID+"/comments", map[string]any{
		"content": "pretending to be staff", "isAdminComment": true,
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/auth/staff/login", map[string]string{
		"email": "ops@dalleni.sa", "password": adminPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.StaffLoginResponse](t, body)
	require.NotEmpty(t, login.AccessToken)

	resp, body = env.do(t, http.MethodGet, "/api/tickets", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TicketResponse](t, body), 1)

	resp, body = env.do(t, http.MethodPut, "/api/tickets/"+created.ID+"/status", map[string]string{"status": "RESOLVED"}, login.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Operations", decode[dto.TicketResponse](t, body).Timeline[1].Actor)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/staff/login", map[string]string{
		"email": "ops@dalleni.sa", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTicketRateLimited(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnvWithLimiter(t, false, ratelimit.NewLimiter(client, "test", nil))

	env.createTicket(t)

	resp, body := env.do(t, http.MethodPost, "/api/tickets", map[string]any{
		"serviceType":      "traffic",
		"issueDescription": "Second ticket inside the window",
		"userEmail":        "citizen@example.com",
	}, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.CodeRateLimited, body.Error.Code)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))

	resp, body = env.do(t, http.MethodGet, "/api/tickets/user/citizen@example.com", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TicketResponse](t, body), 1)
}

func TestUnknownRouteRendersEnvelope(t *testing.T) {
	env := newTestEnv(t, false)
	resp, body := env.do(t, http.MethodGet, "/api/nothing/here", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, false)
	env.createTicket(t)

	resp, _ := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	assert.Equal(t, apperrors.CodeNotFound, toDomainError(fiber.ErrNotFound).Code)
	assert.Equal(t, apperrors.CodeValidation, toDomainError(fiber.ErrUnprocessableEntity).Code)
	assert.Equal(t, apperrors.CodeRateLimited, toDomainError(fiber.ErrTooManyRequests).Code)
	assert.Equal(t, http.StatusServiceUnavailable, toDomainError(fiber.ErrServiceUnavailable).HTTPStatus)
	assert.Equal(t, apperrors.CodePersistence, toDomainError(apperrors.NewPersistenceError(errors.New("db"))).Code)
}
