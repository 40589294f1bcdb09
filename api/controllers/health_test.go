package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	cases := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
	}{
		{name: "all up", db: ok, redis: ok, status: http.StatusOK},
		{name: "redis down", db: ok, redis: down, status: http.StatusServiceUnavailable},
		{name: "redis not configured", db: ok, redis: nil, status: http.StatusOK},
		{name: "everything down", db: down, redis: down, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(cfg, testLogger(), tc.db, tc.redis)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
			if resp.Header().Get("X-Pargne-Env") != "test" {
				t.Fatal("missing env header")
			}
		})
	}
}
