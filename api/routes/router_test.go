package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/quotedesk-backend/api/controllers"
	"github.com/angelmondragon/quotedesk-backend/internal/auth"
	"github.com/angelmondragon/quotedesk-backend/internal/clients"
	"github.com/angelmondragon/quotedesk-backend/internal/quotes"
	"github.com/angelmondragon/quotedesk-backend/pkg/auth/session"
	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
	"github.com/angelmondragon/quotedesk-backend/pkg/metrics"
	"github.com/angelmondragon/quotedesk-backend/pkg/pagination"
)

const validToken = "valid-token"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct {
	user models.User
}

func (s stubSessions) Lookup(ctx context.Context, token string) (*session.Principal, error) {
	if token != validToken {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired session")
	}
	return &session.Principal{User: s.user, SessionID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest, info auth.ClientInfo) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{Token: validToken, TokenType: "Bearer"}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest, info auth.ClientInfo) (*auth.SessionResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func (stubAuthService) Logout(ctx context.Context, token string) error {
	return nil
}

type stubClientService struct{}

func (stubClientService) Create(ctx context.Context, userID uuid.UUID, input clients.CreateInput) (*clients.ClientDTO, error) {
	return &clients.ClientDTO{ID: uuid.New(), UserID: userID, Name: input.Name, Email: input.Email}, nil
}

func (stubClientService) List(ctx context.Context, userID uuid.UUID, search string, page pagination.Params) (*clients.ListDTO, error) {
	return &clients.ListDTO{Clients: []clients.ClientDTO{}}, nil
}

func (stubClientService) Get(ctx context.Context, userID, id uuid.UUID) (*clients.ClientDTO, error) {
	return &clients.ClientDTO{ID: id, UserID: userID}, nil
}

func (stubClientService) Update(ctx context.Context, userID, id uuid.UUID, input clients.UpdateInput) (*clients.ClientDTO, error) {
	return &clients.ClientDTO{ID: id, UserID: userID}, nil
}

func (stubClientService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

type stubQuoteService struct{}

func (stubQuoteService) Create(ctx context.Context, userID uuid.UUID, input quotes.CreateInput) (*models.Quote, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubQuoteService) List(ctx context.Context, userID uuid.UUID) ([]models.Quote, error) {
	return []models.Quote{}, nil
}

func (stubQuoteService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Quote, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
}

func (stubQuoteService) Update(ctx context.Context, userID, id uuid.UUID, input quotes.UpdateInput) (*models.Quote, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubQuoteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

type stubExporter struct{}

func (stubExporter) Preview(ctx context.Context, owner *models.User, id uuid.UUID) (*quotes.RenderedPDF, error) {
	return &quotes.RenderedPDF{Filename: "Q-1.pdf", Content: []byte("%PDF-1.3")}, nil
}

func (stubExporter) Generate(ctx context.Context, owner *models.User, id uuid.UUID) (*quotes.RenderedPDF, error) {
	return &quotes.RenderedPDF{Filename: "Q-1.pdf", Content: []byte("%PDF-1.3")}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "dev", Port: "0"},
		CORS: config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(cfg, logger.Nop(), Dependencies{
		Sessions:    stubSessions{user: models.User{ID: uuid.New(), Email: "owner@example.com", Name: "Owner"}},
		Auth:        stubAuthService{},
		Clients:     stubClientService{},
		Quotes:      stubQuoteService{},
		Exporter:    stubExporter{},
		Health:      map[string]controllers.Pinger{"db": stubPinger{}, "redis": nil},
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/health/live", "/health/ready"} {
		if resp := do(router, http.MethodGet, path, "", ""); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestPrivateGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/api/me", "/api/clients", "/api/quotes"} {
		if resp := do(router, http.MethodGet, path, "", ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", path, resp.Code)
		}
	}
}

func TestPrivateGroupRejectsUnknownToken(t *testing.T) {
	router := newTestRouter(testConfig())
	if resp := do(router, http.MethodGet, "/api/me", "stale", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithSession(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := do(router, http.MethodGet, "/api/me", validToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "owner@example.com") {
		t.Fatalf("expected user in body got %s", resp.Body.String())
	}
}

func TestRegisterIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := do(router, http.MethodPost, "/api/auth/register", "", `{"email":"owner@example.com","password":"longenough","name":"Owner"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLogoutRequiresSession(t *testing.T) {
	router := newTestRouter(testConfig())
	if resp := do(router, http.MethodPost, "/api/auth/logout", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp := do(router, http.MethodPost, "/api/auth/logout", validToken, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestClientRoutes(t *testing.T) {
	router := newTestRouter(testConfig())
	id := uuid.NewString()

	if resp := do(router, http.MethodPost, "/api/clients", validToken, `{"name":"Acme","email":"billing@acme.test"}`); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 on create got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := do(router, http.MethodGet, "/api/clients/"+id, validToken, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on get got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/clients/not-a-uuid", validToken, ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on malformed id got %d", resp.Code)
	}
	if resp := do(router, http.MethodDelete, "/api/clients/"+id, validToken, ""); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete got %d", resp.Code)
	}
}

func TestQuoteRoutes(t *testing.T) {
	router := newTestRouter(testConfig())
	id := uuid.NewString()

	if resp := do(router, http.MethodGet, "/api/quotes", validToken, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on list got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/quotes/"+id, validToken, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on get got %d", resp.Code)
	}

	resp := do(router, http.MethodPost, "/api/quotes/"+id+"/generate-pdf", validToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on generate got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type got %s", got)
	}

	resp = do(router, http.MethodGet, "/api/quotes/"+id+"/pdf", validToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on preview got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.HasPrefix(got, "inline") {
		t.Fatalf("expected inline disposition got %s", got)
	}
}

func TestMetricsEndpointReportsRoutes(t *testing.T) {
	router := newTestRouter(testConfig())
	do(router, http.MethodGet, "/health/live", "", "")

	resp := do(router, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected route label in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodOptions, "/api/quotes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header got %q", got)
	}
}
