package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/spec-kit/character-gallery/internal/observability"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

type errorBody struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields"`
	} `json:"error"`
}

func newMiddlewareApp(metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second, language.English)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "ok"})
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewFieldValidationError([]apperrors.FieldViolation{
			{Field: "rating", Format: "rating must be between %d and %d", Args: []any{1, 5}},
		})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("character", nil)
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestErrorHandlingMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		lang        string
		wantStatus  int
		wantCode    string
		wantMessage string
		wantField   string
	}{
		{name: "validation english", path: "/invalid", wantStatus: 400, wantCode: apperrors.CodeValidationFailed, wantMessage: "validation failed", wantField: "rating must be between 1 and 5"},
		{name: "validation french", path: "/invalid", lang: "fr-FR,fr;q=0.9", wantStatus: 400, wantCode: apperrors.CodeValidationFailed, wantMessage: "la validation a échoué", wantField: "la note doit être comprise entre 1 et 5"},
		{name: "not found french", path: "/missing", lang: "fr", wantStatus: 404, wantCode: apperrors.CodeNotFound, wantMessage: "personnage introuvable"},
		{name: "unknown language falls back", path: "/missing", lang: "de", wantStatus: 404, wantCode: apperrors.CodeNotFound, wantMessage: "character not found"},
		{name: "panic", path: "/panic", wantStatus: 500, wantCode: apperrors.CodeInternal, wantMessage: "internal server error"},
		{name: "unknown route", path: "/nowhere", wantStatus: 404, wantCode: apperrors.CodeNotFound},
	}
	app := newMiddlewareApp(observability.NewMetrics())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.lang != "" {
				req.Header.Set(fiber.HeaderAcceptLanguage, tt.lang)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decodeError(t, resp)
			if body.Error.Code != tt.wantCode {
				t.Fatalf("code = %s, want %s", body.Error.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && body.Error.Message != tt.wantMessage {
				t.Fatalf("message = %q, want %q", body.Error.Message, tt.wantMessage)
			}
			if tt.wantField != "" {
				got := body.Error.Fields["rating"]
				if len(got) != 1 || got[0] != tt.wantField {
					t.Fatalf("fields = %v, want %q", body.Error.Fields, tt.wantField)
				}
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newMiddlewareApp(nil)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(observability.RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get(observability.RequestIDHeader); got != "req-42" {
		t.Fatalf("request id = %q, want req-42", got)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.Header.Get(observability.RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestMiddlewareRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	app := newMiddlewareApp(metrics)
	for _, path := range []string{"/ok", "/missing"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil)); err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
	}
	snap := metrics.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("requests = %+v, want 2 entries", snap.Requests)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Code != apperrors.CodeNotFound {
		t.Fatalf("errors = %+v, want one NOT_FOUND", snap.Errors)
	}
}
