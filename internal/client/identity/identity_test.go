package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/client/identity"
	"tasktracker/internal/client/session"
)

type fakeProvider struct {
	t            *testing.T
	tokenCalls   atomic.Int32
	lastIdPBody  map[string]any
	rotateTokens bool
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(p.t, "api-key", r.URL.Query().Get("key"))

	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/accounts:signInWithPassword", "/accounts:signUp":
		body := map[string]any{}
		assert.NoError(p.t, json.NewDecoder(r.Body).Decode(&body))

		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "user-a",
			"email":        body["email"],
			"idToken":      "id-token",
			"refreshToken": "refresh-1",
		})
	case "/accounts:signInWithIdp":
		p.lastIdPBody = map[string]any{}
		assert.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.lastIdPBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "user-g",
			"email":        "g@example.com",
			"idToken":      "id-token",
			"refreshToken": "refresh-g",
		})
	case "/token":
		assert.NoError(p.t, r.ParseForm())
		assert.Equal(p.t, "refresh_token", r.PostForm.Get("grant_type"))

		call := p.tokenCalls.Add(1)

		refresh := r.PostForm.Get("refresh_token")
		if p.rotateTokens {
			refresh = "rotated"
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id_token":      "fresh-" + r.PostForm.Get("refresh_token") + "-" + strconv.Itoa(int(call)),
			"refresh_token": refresh,
			"user_id":       "user-a",
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newClient(t *testing.T, provider *fakeProvider) (*identity.Client, *identity.FileStore, *session.Watcher) {
	t.Helper()

	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	store := identity.NewFileStoreAt(filepath.Join(t.TempDir(), "tasktracker", "credentials.json"))
	watcher := session.NewWatcher()

	client := identity.New(identity.Options{
		APIKey:          "api-key",
		IdentityBaseURL: server.URL + "/",
		TokenBaseURL:    server.URL,
		HTTPClient:      server.Client(),
		Store:           store,
		Watcher:         watcher,
	})

	return client, store, watcher
}

func TestSignInWithPassword(t *testing.T) {
	client, store, watcher := newClient(t, &fakeProvider{t: t})

	require.NoError(t, client.SignInWithPassword(context.Background(), "a@example.com", "secret"))

	assert.Equal(t, session.Authenticated("user-a", "a@example.com"), watcher.Current())

	credential, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", credential.RefreshToken)
}

func TestSignInWithPassword_Rejected(t *testing.T) {
	client, store, watcher := newClient(t, &fakeProvider{t: t})

	err := client.SignInWithPassword(context.Background(), "a@example.com", "wrong")

	require.ErrorIs(t, err, identity.ErrProvider)

	var providerErr *identity.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusBadRequest, providerErr.Status)
	assert.Equal(t, "INVALID_PASSWORD", providerErr.Message)

	assert.Equal(t, session.StatusLoading, watcher.Current().Status)

	credential, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, credential)
}

func TestSignUp(t *testing.T) {
	client, _, watcher := newClient(t, &fakeProvider{t: t})

	require.NoError(t, client.SignUp(context.Background(), "new@example.com", "secret"))

	assert.True(t, watcher.Current().IsAuthenticated())
	assert.Equal(t, "new@example.com", watcher.Current().Email)
}

func TestSignInWithIdP(t *testing.T) {
	provider := &fakeProvider{t: t}
	client, _, watcher := newClient(t, provider)

	require.NoError(t, client.SignInWithIdP(context.Background(), identity.ProviderGoogle, "google-token"))

	postBody, err := url.ParseQuery(provider.lastIdPBody["postBody"].(string))
	require.NoError(t, err)
	assert.Equal(t, "google-token", postBody.Get("id_token"))
	assert.Equal(t, "google.com", postBody.Get("providerId"))
	assert.Equal(t, true, provider.lastIdPBody["returnSecureToken"])

	assert.Equal(t, "user-g", watcher.Current().Subject)
}

func TestSignInWithGoogle_Disabled(t *testing.T) {
	client, _, _ := newClient(t, &fakeProvider{t: t})

	assert.ErrorIs(t, client.SignInWithGoogle(context.Background()), identity.ErrFederatedDisabled)
}

func TestIDToken_FreshOnEveryCall(t *testing.T) {
	provider := &fakeProvider{t: t}
	client, _, _ := newClient(t, provider)

	require.NoError(t, client.SignInWithPassword(context.Background(), "a@example.com", "secret"))

	first, err := client.IDToken(context.Background())
	require.NoError(t, err)

	second, err := client.IDToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fresh-refresh-1-1", first)
	assert.Equal(t, "fresh-refresh-1-2", second)
	assert.Equal(t, int32(2), provider.tokenCalls.Load())
}

func TestIDToken_PersistsRotatedRefreshToken(t *testing.T) {
	provider := &fakeProvider{t: t, rotateTokens: true}
	client, store, _ := newClient(t, provider)

	require.NoError(t, client.SignInWithPassword(context.Background(), "a@example.com", "secret"))

	_, err := client.IDToken(context.Background())
	require.NoError(t, err)

	credential, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "rotated", credential.RefreshToken)
}

func TestIDToken_NotSignedIn(t *testing.T) {
	client, _, _ := newClient(t, &fakeProvider{t: t})

	_, err := client.IDToken(context.Background())

	assert.ErrorIs(t, err, identity.ErrNotSignedIn)
}

func TestRestoreAndSignOut(t *testing.T) {
	client, store, watcher := newClient(t, &fakeProvider{t: t})

	client.Restore()
	assert.Equal(t, session.StatusUnauthenticated, watcher.Current().Status)

	require.NoError(t, store.Save(&identity.Credential{Subject: "user-a", RefreshToken: "r"}))

	client.Restore()
	assert.Equal(t, session.Authenticated("user-a", ""), watcher.Current())

	require.NoError(t, client.SignOut())
	assert.Equal(t, session.StatusUnauthenticated, watcher.Current().Status)

	credential, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, credential)
}
