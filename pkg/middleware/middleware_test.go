package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "lodging/pkg/errors"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func decodeErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Code
}

func TestUserRateLimiter_Allow(t *testing.T) {
	limiter := NewUserRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()

	if !limiter.Allow("user-1") || !limiter.Allow("user-1") {
		t.Fatal("first two requests must be allowed")
	}
	if limiter.Allow("user-1") {
		t.Error("third request within the window must be rejected")
	}
	if !limiter.Allow("user-2") {
		t.Error("limits are per user")
	}
	if !limiter.Allow("") {
		t.Error("anonymous requests bypass the limiter")
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	limiter := NewUserRateLimiter(1, time.Minute, nil, logger.Discard())
	defer limiter.Stop()
	handler := RateLimit(limiter)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/booking", nil)
		req.Header.Set(httputil.UserIDHeader, "user-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rr.Code)
		}
		if want == http.StatusTooManyRequests {
			if code := decodeErrorCode(t, rr.Body); code != apperrors.CodeRateLimited {
				t.Errorf("expected %s, got %s", apperrors.CodeRateLimited, code)
			}
		}
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(logger.Discard())(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"get without content type", http.MethodGet, "", http.StatusOK},
		{"post json", http.MethodPost, "application/json", http.StatusOK},
		{"put json with charset", http.MethodPut, "Application/JSON; charset=utf-8", http.StatusOK},
		{"post missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"put form", http.MethodPut, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/booking", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Error("panic value must not leak to the client")
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected generated request id echoed in header, got %q / %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-id" {
		t.Errorf("expected inbound request id reused, got %q", seen)
	}
}

func TestMaxRequestSize(t *testing.T) {
	handler := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := httputil.DecodeJSON(r, &body); err != nil {
			_ = httputil.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"roomId":"0123456789abcdef01234567"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rr.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	handler := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rr.Code)
	}
}

func TestIdempotency_ReplaysPerUser(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = httputil.WriteSuccess(w, map[string]int{"call": calls})
	}))

	send := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", nil)
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		req.Header.Set(httputil.UserIDHeader, userID)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send("user-1")
	second := send("user-1")
	if calls != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("expected replayed body, got %q vs %q", first.Body.String(), second.Body.String())
	}

	send("user-2")
	if calls != 2 {
		t.Errorf("a different user with the same key must not be replayed")
	}
}

func TestIdempotency_DoesNotCacheErrors(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = httputil.WriteError(w, apperrors.Forbidden("room is full"))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", nil)
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("expected error responses not cached, handler called %d times", calls)
	}
}

func TestIdempotency_RejectsConcurrentDuplicate(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	entered := make(chan struct{})
	release := make(chan struct{})
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_ = httputil.WriteSuccess(w, map[string]string{"bookingId": "b1"})
	}))

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", nil)
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		req.Header.Set(httputil.UserIDHeader, "user-1")
		return req
	}

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(first, newReq())
	}()
	<-entered

	dup := httptest.NewRecorder()
	handler.ServeHTTP(dup, newReq())
	if dup.Code != http.StatusConflict {
		t.Errorf("expected 409 for in-flight duplicate, got %d", dup.Code)
	}

	close(release)
	<-done
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", first.Code)
	}

	replayed := httptest.NewRecorder()
	handler.ServeHTTP(replayed, newReq())
	if replayed.Code != http.StatusOK || replayed.Body.String() != first.Body.String() {
		t.Errorf("expected replay of first response, got %d %q", replayed.Code, replayed.Body.String())
	}
}

func TestIdempotency_ReleasesKeyOnPanic(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/booking", nil)
	req.Header.Set(DefaultIdempotencyHeader, "key-1")
	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}()

	if _, claimed := store.Begin("PUT::key-1"); !claimed {
		t.Error("expected key to be free again after the handler panicked")
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	if _, claimed := store.Begin("k"); !claimed {
		t.Fatal("expected fresh key to be claimed")
	}
	store.Complete("k", &CachedResponse{StatusCode: http.StatusOK})

	if cached, _ := store.Begin("k"); cached == nil {
		t.Fatal("expected cached response")
	}

	store.evict(time.Now().Add(2 * time.Minute))
	if cached, claimed := store.Begin("k"); cached != nil || !claimed {
		t.Errorf("expected expired entry to be evicted, got cached=%v claimed=%v", cached, claimed)
	}
}
