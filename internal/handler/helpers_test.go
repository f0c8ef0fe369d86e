package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clientdesk/clientdesk/internal/auth"
	"github.com/clientdesk/clientdesk/internal/repository"
	"github.com/clientdesk/clientdesk/internal/service"
)

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

type handlerEnv struct {
	accounts *AccountHandler
	auth     *AuthHandler
	projects *ProjectHandler
	tokens   *auth.TokenService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	tokens := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour, 24*time.Hour)
	hasher := auth.NewHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	logger := discardLogger()

	accountSvc := service.NewAccountService(store, hasher, tokens)
	projectSvc := service.NewProjectService(store)

	return &handlerEnv{
		accounts: NewAccountHandler(accountSvc, logger),
		auth:     NewAuthHandler(accountSvc, logger),
		projects: NewProjectHandler(projectSvc, logger),
		tokens:   tokens,
	}
}

// call invokes fn with a JSON body, the given URL params and, when actor is
// non-zero, an authenticated identity.
func call(t *testing.T, fn http.HandlerFunc, method string, body any, actor int64, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, "/", &buf)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := contextWithRoute(req, rctx)
	if actor != 0 {
		ctx = auth.ContextWithIdentity(ctx, auth.Identity{AccountID: actor})
	}

	rec := httptest.NewRecorder()
	fn(rec, req.WithContext(ctx))
	return rec
}

func (e *handlerEnv) register(t *testing.T, handle string) int64 {
	t.Helper()
	rec := call(t, e.accounts.Register, http.MethodPost, map[string]string{
		"handle":    handle,
		"password":  "p1",
		"full_name": "Test " + handle,
		"email":     handle + "@example.com",
	}, 0, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", handle, rec.Code, rec.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return created.ID
}
