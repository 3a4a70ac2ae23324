package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/ecofinds-backend/pkg/auth"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "ecofinds"}

type capturedIdentity struct {
	user    string
	session string
	owner   string
}

func identityHandler(captured *capturedIdentity) http.Handler {
	return Identity(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.session = SessionIDFromContext(r.Context())
		captured.owner = CartOwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func mintTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), userID, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestIdentityAnonymousPassesThrough(t *testing.T) {
	var captured capturedIdentity
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.owner != "" {
		t.Fatalf("expected no cart owner, got %q", captured.owner)
	}
}

func TestIdentitySessionHeader(t *testing.T) {
	var captured capturedIdentity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(sessionIDHeader, "abc-123")
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.owner != "session:abc-123" {
		t.Fatalf("unexpected owner %q", captured.owner)
	}
	if captured.session != "abc-123" {
		t.Fatalf("unexpected session %q", captured.session)
	}
}

func TestIdentitySessionQueryFallback(t *testing.T) {
	var captured capturedIdentity
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?session_id=xyz", nil))

	if captured.owner != "session:xyz" {
		t.Fatalf("unexpected owner %q", captured.owner)
	}
}

func TestIdentityBearerWinsOverSession(t *testing.T) {
	userID := uuid.New()
	var captured capturedIdentity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID))
	req.Header.Set(sessionIDHeader, "abc-123")
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if captured.owner != "user:"+userID.String() {
		t.Fatalf("unexpected owner %q", captured.owner)
	}
}

func TestIdentityAccessTokenQuery(t *testing.T) {
	userID := uuid.New()
	var captured capturedIdentity
	req := httptest.NewRequest(http.MethodGet, "/?access_token="+mintTestToken(t, userID), nil)
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, req)

	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, captured.user)
	}
}

func TestIdentityRejectsInvalidToken(t *testing.T) {
	var captured capturedIdentity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestIdentityRejectsOversizedSession(t *testing.T) {
	var captured capturedIdentity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(sessionIDHeader, strings.Repeat("a", 200))
	resp := httptest.NewRecorder()
	identityHandler(&captured).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRequireUserAndCartOwner(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	sessionOnly := httptest.NewRequest(http.MethodGet, "/", nil)
	sessionOnly.Header.Set(sessionIDHeader, "abc")

	resp := httptest.NewRecorder()
	Identity(testJWT, nil)(RequireUser(nil)(ok)).ServeHTTP(resp, sessionOnly)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("RequireUser: expected 401 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	Identity(testJWT, nil)(RequireCartOwner(nil)(ok)).ServeHTTP(resp, sessionOnly)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("RequireCartOwner: expected 204 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	Identity(testJWT, nil)(RequireCartOwner(nil)(ok)).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("RequireCartOwner anonymous: expected 401 got %d", resp.Code)
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if seen != "req-1" || resp.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected echoed request id, got ctx=%q header=%q", seen, resp.Header().Get(requestIDHeader))
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(resp.Header().Get(requestIDHeader)); err != nil {
		t.Fatalf("expected generated uuid request id: %v", err)
	}
}

func TestLoggingKeepsFlusher(t *testing.T) {
	var flusher bool
	handler := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flusher = w.(http.Flusher)
		w.WriteHeader(http.StatusAccepted)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if !flusher {
		t.Fatal("expected wrapped writer to implement http.Flusher")
	}
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", resp.Code)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("expected INTERNAL_ERROR body, got %s", resp.Body.String())
	}
}

func TestRequestIDReplacesMalformedIDs(t *testing.T) {
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, bad := range []string{"bad id\ninjected", strings.Repeat("a", maxRequestIDLength+1), "id{}"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, bad)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if _, err := uuid.Parse(resp.Header().Get(requestIDHeader)); err != nil {
			t.Fatalf("expected %q to be replaced by a uuid, got %q", bad, resp.Header().Get(requestIDHeader))
		}
	}
}

func TestRecovererLogsRouteAndCartCaller(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	router := chi.NewRouter()
	router.Use(Recoverer(logg))
	router.Patch("/cart/items/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		panic("quantity overflow")
	})

	req := httptest.NewRequest(http.MethodPatch, "/cart/items/mug", nil)
	req.Header.Set(sessionIDHeader, "sess-private")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	entry := buf.String()
	for _, want := range []string{`"route":"/cart/items/{itemId}"`, `"cart_caller":"session"`, `"panic":"quantity overflow"`} {
		if !strings.Contains(entry, want) {
			t.Fatalf("expected %s in log entry %s", want, entry)
		}
	}
	if strings.Contains(entry, "sess-private") {
		t.Fatalf("session id leaked into log entry %s", entry)
	}
}
