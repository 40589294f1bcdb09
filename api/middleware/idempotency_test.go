package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func submitRequest(user uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/g/contributions", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req.WithContext(WithUserID(req.Context(), user))
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"c1"}}`))
	}))
	user := uuid.New()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, submitRequest(user, "key-1", `{"amount":"10"}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, submitRequest(user, "key-1", `{"amount":"10"}`))

	if calls != 1 {
		t.Fatalf("expected handler once, got %d", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replay, got %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	user := uuid.New()

	handler.ServeHTTP(httptest.NewRecorder(), submitRequest(user, "key-1", `{"amount":"10"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(user, "key-1", `{"amount":"99"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyScopesKeysPerUser(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), submitRequest(uuid.New(), "shared", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), submitRequest(uuid.New(), "shared", `{}`))

	if calls != 2 {
		t.Fatalf("expected independent users to both execute, got %d calls", calls)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	user := uuid.New()

	handler.ServeHTTP(httptest.NewRecorder(), submitRequest(user, "k", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), submitRequest(user, "k", `{}`))

	if calls != 2 || len(store.data) != 0 {
		t.Fatalf("expected failures to be retried, calls=%d stored=%d", calls, len(store.data))
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	handler := Idempotency(newFakeStore(), time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a key")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(uuid.New(), "", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
