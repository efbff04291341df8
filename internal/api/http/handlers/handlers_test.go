package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/observability"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus int
	}{
		{name: "all up", deps: map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{}}, wantStatus: http.StatusOK},
		{name: "redis down", deps: map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}}, wantStatus: http.StatusServiceUnavailable},
		{name: "no deps", deps: nil, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewHealthHandler("character-gallery", "test", tt.deps, observability.NewMetrics())
			app.Get("/ready", h.Ready)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{query: "", wantLimit: 20, wantOffset: 0},
		{query: "?page=3&page_size=10", wantLimit: 10, wantOffset: 20},
		{query: "?page=0&page_size=abc", wantLimit: 20, wantOffset: 0},
		{query: "?page=2&page_size=5000", wantLimit: 100, wantOffset: 100},
		{query: "?page=9223372036854775807&page_size=100", wantLimit: 100, wantOffset: 999900},
		{query: "?page=4611686018427387904&page_size=4", wantLimit: 4, wantOffset: 39996},
		{query: "?page=99999999999999999999&page_size=10", wantLimit: 10, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return c.JSON(parsePage(c))
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			var page struct{ Limit, Offset int }
			if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if page.Limit != tt.wantLimit || page.Offset != tt.wantOffset {
				t.Fatalf("page = %+v, want limit %d offset %d", page, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.ToDomainError(err).HTTPStatus).SendString(apperrors.ToDomainError(err).Message)
		},
	})
	app.Get("/", func(c *fiber.Ctx) error {
		if _, err := parseTime(c, "from"); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/?from=2026-03-01T12:00:00Z", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" CHARACTER_APPROVED, ,COMMENT_REJECTED ")
	if len(got) != 2 || got[0] != "CHARACTER_APPROVED" || got[1] != "COMMENT_REJECTED" {
		t.Fatalf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Fatal("empty input must yield nil")
	}
}
