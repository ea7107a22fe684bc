package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/config"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/logging"
)

func TestNewDevelopmentServer(t *testing.T) {
	cfg := config.Config{AppName: "test", AppEnv: "development", Port: "0", JWTSecret: "s", TokenTTL: time.Minute}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}

func TestNewProductionServerNeedsBackends(t *testing.T) {
	cfg := config.Config{AppName: "test", AppEnv: "production", JWTSecret: "s", TokenTTL: time.Minute}
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error without database and redis")
	}
}
