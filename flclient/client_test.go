package flclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/", "test-repo", server.Client())
}

func TestPing(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		fmt.Fprintln(w, "FitLayout Web Service")
	}))

	pong, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FitLayout Web Service", pong)
}

func TestArtifacts(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/r/test-repo/artifact", r.URL.Path)
		json.NewEncoder(w).Encode([]Artifact{
			{IRI: R + "art1", Type: "box:Page"},
			{IRI: R + "art2", Type: "segm:AreaTree", ParentIRI: R + "art1"},
		})
	}))

	artifacts, err := c.Artifacts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, R+"art1", artifacts[0].IRI)
	assert.Equal(t, R+"art1", artifacts[1].ParentIRI)
}

func TestArtifactsByType(t *testing.T) {
	var posted map[string]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/r/test-repo/repository/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		fmt.Fprint(w, `{"head":{"vars":["a"]},"results":{"bindings":[
			{"a":{"type":"uri","value":"http://fitlayout.github.io/resource/art2"}}]}}`)
	}))

	artifacts, err := c.Artifacts(context.Background(), "segm:AreaTree")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, R+"art2", artifacts[0].IRI)

	assert.Contains(t, posted["query"], "PREFIX segm: <"+SEGM+">")
	assert.Contains(t, posted["query"], "?a rdf:type segm:AreaTree")
}

func TestArtifactsByFullTypeIRI(t *testing.T) {
	var posted map[string]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&posted)
		fmt.Fprint(w, `{"head":{"vars":["a"]},"results":{"bindings":[]}}`)
	}))

	_, err := c.Artifacts(context.Background(), SEGM+"AreaTree")
	require.NoError(t, err)
	assert.Contains(t, posted["query"], "?a rdf:type <"+SEGM+"AreaTree>")
}

func TestArtifactItem(t *testing.T) {
	iri := R + "art1"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/r/test-repo/artifact/item", r.URL.Path)
		assert.Equal(t, iri, r.URL.Query().Get("iri"))
		fmt.Fprint(w, `{"iri":"`+iri+`","label":"page","pageWidth":1200}`)
	}))

	metadata, err := c.Artifact(context.Background(), iri)
	require.NoError(t, err)
	assert.Equal(t, iri, metadata["iri"])
	assert.Equal(t, float64(1200), metadata["pageWidth"])
}

func TestDeleteArtifact(t *testing.T) {
	var method string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		assert.Equal(t, "/api/r/test-repo/artifact/item", r.URL.Path)
	}))

	require.NoError(t, c.DeleteArtifact(context.Background(), R+"art1"))
	assert.Equal(t, http.MethodDelete, method)
}

func TestQuery(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"head":{"vars":["s","p"]},"results":{"bindings":[
			{"s":{"type":"uri","value":"http://example.com/s"},
			 "p":{"type":"literal","value":"42","datatype":"http://www.w3.org/2001/XMLSchema#int"}}]}}`)
	}))

	result, err := c.Query(context.Background(), "SELECT ?s ?p WHERE { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "p"}, result.Head.Vars)
	require.Len(t, result.Results.Bindings, 1)
	assert.Equal(t, "42", result.Results.Bindings[0]["p"].Value)
	assert.Equal(t, "uri", result.Results.Bindings[0]["s"].Type)
}

func TestServicesAndInvoke(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/service":
			json.NewEncoder(w).Encode([]Service{{
				ID:   "FitLayout.Puppeteer",
				Name: "Puppeteer renderer",
				Params: []ServiceParam{
					{Name: "url", Type: "string", Required: true},
					{Name: "width", Type: "int"},
				},
			}})
		case "/api/r/test-repo/service/invoke":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "FitLayout.Puppeteer", body["serviceId"])
			params := body["params"].(map[string]any)
			assert.Equal(t, "http://example.com", params["url"])
			_, hasParent := body["parentIri"]
			assert.False(t, hasParent)
			json.NewEncoder(w).Encode(Artifact{IRI: R + "created", Type: "box:Page"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	services, err := c.Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "FitLayout.Puppeteer", services[0].ID)
	assert.True(t, services[0].Params[0].Required)

	artifact, err := c.InvokeService(context.Background(), "FitLayout.Puppeteer", "",
		map[string]any{"url": "http://example.com"})
	require.NoError(t, err)
	assert.Equal(t, R+"created", artifact.IRI)
}

func TestCreateRepositoryGeneratesID(t *testing.T) {
	var posted RepositoryInfo
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/repository", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
	}))

	created, err := c.CreateRepository(context.Background(), "scratch", "")
	require.NoError(t, err)
	_, err = uuid.Parse(posted.ID)
	assert.NoError(t, err)
	assert.Equal(t, posted.ID, created.ID)
	assert.Equal(t, "scratch", created.Name)
}

func TestRepositoryIDIsEscapedInPaths(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := New(server.URL, "repo with spaces", server.Client())
	_, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/r/repo%20with%20spaces/repository/info", path)
}

func TestAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "repository not found", http.StatusNotFound)
	}))

	_, err := c.Info(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.True(t, strings.Contains(apiErr.Error(), "repository not found"))
}
