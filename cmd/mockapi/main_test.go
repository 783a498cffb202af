package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/clinicdesk/internal/config"
	httpmiddleware "github.com/wolfman30/clinicdesk/internal/http/middleware"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) }

func TestSetupMetricsExposesRuntimeCollectors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	setupMetrics().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected go collector output")
	}
}

func TestSetupServerServesSeededData(t *testing.T) {
	t.Setenv("CLINIC_API_BASE_PATH", "")
	cfg := &appconfig.Config{CORSOrigins: []string{"*"}}
	handler, stop := setupServer(cfg, logging.Discard(), fixedNow)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/client-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"success":true`) {
		t.Fatalf("expected success envelope, got %s", rr.Body.String())
	}
}

func TestSetupServerRequiresTokenWhenSecretSet(t *testing.T) {
	t.Setenv("CLINIC_API_BASE_PATH", "")
	cfg := &appconfig.Config{JWTSecret: "dev-secret", RateLimitRPS: 100, RateLimitBurst: 100}
	handler, stop := setupServer(cfg, logging.Discard(), fixedNow)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	token, err := httpmiddleware.SignToken("dev-secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rr.Code, rr.Body.String())
	}
}
