package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/apperr"
)

func TestFallbackRoutes(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("unknown route returns 404 envelope", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/v1/does-not-exist", nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "Endpoint not found. The requested API route does not exist.")

		request := body["request"].(map[string]any)
		if request["method"] != http.MethodGet {
			t.Fatalf("expected request method in envelope, got %+v", request)
		}
		if !strings.HasSuffix(request["url"].(string), "/api/v1/does-not-exist") {
			t.Fatalf("expected request url in envelope, got %v", request["url"])
		}
	})

	t.Run("wrong method returns 405 envelope", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/v1/auth/login", nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusMethodNotAllowed)
		assertEnvelopeError(t, body, "Method GET is not allowed for this route. Allowed methods: POST")
	})
}

func TestRouteMatches(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/v1/groups/:id", "/api/v1/groups/abc", true},
		{"/api/v1/groups/:id", "/api/v1/groups/abc/bills", false},
		{"/api/v1/groups/:id/bills/:billId", "/api/v1/groups/a/bills/b", true},
		{"/api/v1/auth/login", "/api/v1/auth/logout", false},
		{"/api/v1/groups/", "/api/v1/groups", true},
	}
	for _, tc := range cases {
		if got := routeMatches(tc.pattern, tc.path); got != tc.want {
			t.Fatalf("routeMatches(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}

func TestErrorHandler(t *testing.T) {
	newApp := func(debug bool) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(debug)})
		app.Get("/boom", func(c *fiber.Ctx) error {
			return errors.New("database exploded")
		})
		app.Get("/forbidden", func(c *fiber.Ctx) error {
			return apperr.Forbidden("Nope")
		})
		return app
	}

	t.Run("internal error hides cause outside debug", func(t *testing.T) {
		resp := performRequest(t, newApp(false), http.MethodGet, "/boom", nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusInternalServerError)
		assertEnvelopeError(t, body, "Something went wrong!")
		if _, ok := body["debug"]; ok {
			t.Fatalf("debug must be omitted, got %+v", body["debug"])
		}
	})

	t.Run("internal error shows cause in debug", func(t *testing.T) {
		resp := performRequest(t, newApp(true), http.MethodGet, "/boom", nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusInternalServerError)
		debug := body["debug"].(map[string]any)
		if debug["error"] != "database exploded" {
			t.Fatalf("unexpected debug payload %+v", debug)
		}
	})

	t.Run("application error keeps its status", func(t *testing.T) {
		resp := performRequest(t, newApp(false), http.MethodGet, "/forbidden", nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "Nope")
	})
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	resp := performRequest(t, env.app, http.MethodGet, "/api/v1/health", nil, nil)
	body := decodeJSONMap(t, resp)
	assertStatus(t, resp, http.StatusOK)
	if body["message"] != "System health check successful" {
		t.Fatalf("unexpected message %v", body["message"])
	}

	data := dataMap(t, body)
	db := data["database"].(map[string]any)
	if db["status"] != "connected" || db["driver"] != "sqlite" {
		t.Fatalf("unexpected database health %+v", db)
	}
	app := data["app"].(map[string]any)
	if app["name"] != "billsplit-test" {
		t.Fatalf("unexpected app info %+v", app)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	resp := performRequest(t, env.app, http.MethodGet, "/api/v1/health", nil, nil)
	assertStatus(t, resp, http.StatusOK)

	resp = performRequest(t, env.app, http.MethodGet, "/metrics", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading metrics: %v", err)
	}
	if !strings.Contains(string(raw), `billsplit_http_requests_total{method="GET",route="/api/v1/health",status="200"}`) {
		t.Fatalf("expected health request counter in metrics output")
	}
}
