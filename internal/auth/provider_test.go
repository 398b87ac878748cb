package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/stretchr/testify/assert"
)

func TestRemoteProviderSendsTokenAsJSON(t *testing.T) {
	var got struct {
		Token string `json:"token"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(internal.User{ID: "u1", Token: got.Token, Name: "Remote User"})
	}))
	defer srv.Close()

	provider := NewRemoteAuthProvider(srv.URL, internal.NopLogger{})

	// Quotes and backslashes must survive the request body intact.
	token := `tok"en\with"specials`
	user, err := provider.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, token, got.Token)
	assert.Equal(t, "u1", user.ID)
}

func TestRemoteProviderRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := NewRemoteAuthProvider(srv.URL, internal.NopLogger{})
	_, err := provider.ValidateToken(context.Background(), "expired")
	assert.Error(t, err)
}
