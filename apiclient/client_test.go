package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	backauth "github.com/citymarkets/backoffice-auth"
	"github.com/citymarkets/backoffice-auth/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navRecorder struct {
	paths []string
}

func (n *navRecorder) Navigate(path string) {
	n.paths = append(n.paths, path)
}

func staticToken(token string) apiclient.TokenSource {
	return apiclient.TokenSourceFunc(func() (string, bool) {
		return token, token != ""
	})
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := apiclient.New(apiclient.Config{
		BaseURL: srv.URL,
		Tokens:  staticToken("token-123"),
	})

	var out map[string]any
	require.NoError(t, client.GetJSON(context.Background(), "/reports", &out))

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, true, out["ok"])
}

func TestClientOmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := apiclient.New(apiclient.Config{
		BaseURL: srv.URL,
		Tokens:  staticToken(""),
	})

	require.NoError(t, client.GetJSON(context.Background(), "/reports", nil))
	assert.Empty(t, gotAuth)
}

func TestClientRoutesUnauthorizedToLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	nav := &navRecorder{}
	client := apiclient.New(apiclient.Config{
		BaseURL:   srv.URL,
		Navigator: nav,
	})

	err := client.GetJSON(context.Background(), "/reports", nil)
	assert.Error(t, err)
	assert.Equal(t, []string{backauth.LoginRoute}, nav.paths)
}

func TestClientRoutesForbiddenCollectionToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	nav := &navRecorder{}
	client := apiclient.New(apiclient.Config{
		BaseURL:   srv.URL,
		Navigator: nav,
	})

	err := client.GetJSON(context.Background(), "/merchants", nil)
	assert.Error(t, err)
	assert.Equal(t, []string{backauth.NotFoundRoute}, nav.paths)
}

func TestClientDetailFetchesHandleTheirOwnMisses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	nav := &navRecorder{}
	client := apiclient.New(apiclient.Config{
		BaseURL:   srv.URL,
		Navigator: nav,
	})

	// A missing detail record surfaces as an error without navigating.
	err := client.GetJSON(context.Background(), "/transactions/tx-404", nil)
	assert.Error(t, err)
	assert.Empty(t, nav.paths)

	// The bare collection path is not a detail fetch.
	err = client.GetJSON(context.Background(), "/transactions/", nil)
	assert.Error(t, err)
	assert.Equal(t, []string{backauth.NotFoundRoute}, nav.paths)
}

func TestClientSuppressesRedirectOnNotFoundPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	nav := &navRecorder{}
	client := apiclient.New(apiclient.Config{
		BaseURL:     srv.URL,
		Navigator:   nav,
		CurrentPath: func() string { return backauth.NotFoundRoute },
	})

	err := client.GetJSON(context.Background(), "/collections", nil)
	assert.Error(t, err)
	assert.Empty(t, nav.paths)
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":"m-001"}`))
	}))
	defer srv.Close()

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL})

	var out struct {
		ID string `json:"id"`
	}
	in := map[string]any{"name": "Marché Tilène"}
	require.NoError(t, client.PostJSON(context.Background(), "/merchants", in, &out))
	assert.Equal(t, "m-001", out.ID)
}

func TestStoreTokenSource(t *testing.T) {
	store := backauth.NewSessionStore(
		&backauth.MemoryCredentialTier{},
		&backauth.MemoryProfileTier{},
	)

	tokens := apiclient.StoreTokenSource(store)

	_, ok := tokens.Token()
	assert.False(t, ok)

	store.Set("token-123", backauth.RoleStaff, nil)
	token, ok := tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "token-123", token)
}
