package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientInjectsHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer server.Close()

	client := Client([]string{"X-Auth: secret", "Authorization: Bearer token-with:colon", "malformed"})
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "secret", got.Get("X-Auth"))
	assert.Equal(t, "Bearer token-with:colon", got.Get("Authorization"))
}

func TestClientKeepsCallerHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer server.Close()

	client := Client([]string{"Accept: application/json"})
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/turtle")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "text/turtle", got.Get("Accept"))
}

func TestClientWithoutHeaders(t *testing.T) {
	client := Client(nil)
	assert.Nil(t, client.Transport)
}
