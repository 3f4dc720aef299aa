package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inelac/inventory-backend/pkg/actor"
	"github.com/inelac/inventory-backend/pkg/errors"
)

type fakeValidator struct {
	actor *actor.Actor
	err   error
}

func (v *fakeValidator) ValidateAccessToken(string) (*actor.Actor, error) {
	return v.actor, v.err
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(&fakeValidator{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/items", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	validator := &fakeValidator{err: errors.Unauthorized("invalid token")}
	handler := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest("GET", "/items", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAttachesActor(t *testing.T) {
	validator := &fakeValidator{actor: &actor.Actor{ID: "u1", Role: actor.RoleDispatcher}}

	var got *actor.Actor
	handler := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = actor.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/items", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, got) {
		assert.Equal(t, "u1", got.ID)
	}
}

func TestRequireAdministrator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(actor.WithActor(req.Context(), &actor.Actor{ID: "u1", Role: actor.RoleDispatcher}))

	rec := httptest.NewRecorder()
	RequireAdministrator(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(actor.WithActor(req.Context(), &actor.Actor{ID: "u2", Role: actor.RoleAdministrator}))

	rec = httptest.NewRecorder()
	RequireAdministrator(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
