package features

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fitlayout/flcurl/flclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeatures(t *testing.T, handler http.Handler) (ServerFeatures, func() string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	out, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })

	f := ServerFeatures{
		Client: flclient.New(server.URL, "test-repo", server.Client()),
		Out:    out,
	}
	return f, func() string {
		data, err := os.ReadFile(out.Name())
		require.NoError(t, err)
		return string(data)
	}
}

func TestPrintPing(t *testing.T) {
	f, output := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))

	require.NoError(t, f.PrintPing(context.Background()))
	assert.Equal(t, "Pinging FitLayout server...pong\n", output())
}

func TestPrintArtifactsEmitsJSONLines(t *testing.T) {
	f, output := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]flclient.Artifact{
			{IRI: flclient.R + "art1", Type: "box:Page"},
			{IRI: flclient.R + "art2", Type: "segm:AreaTree"},
		})
	}))

	require.NoError(t, f.PrintArtifacts(context.Background(), ""))
	lines := strings.Split(strings.TrimSpace(output()), "\n")
	require.Len(t, lines, 2)
	var artifact flclient.Artifact
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &artifact))
	assert.Equal(t, flclient.R+"art2", artifact.IRI)
}

func TestRunQueryFlattensBindings(t *testing.T) {
	f, output := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"head":{"vars":["a","label"]},"results":{"bindings":[
			{"a":{"type":"uri","value":"http://example.com/a"},
			 "label":{"type":"literal","value":"page"}}]}}`)
	}))

	require.NoError(t, f.RunQuery(context.Background(), "SELECT ?a ?label WHERE { ?a rdfs:label ?label }"))
	var row map[string]string
	require.NoError(t, json.Unmarshal([]byte(output()), &row))
	assert.Equal(t, map[string]string{"a": "http://example.com/a", "label": "page"}, row)
}

func TestInvokeServicePassesParentSeparately(t *testing.T) {
	var body map[string]any
	f, output := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(flclient.Artifact{IRI: flclient.R + "tree"})
	}))

	data := `{"parent":"` + flclient.R + `page","method":"vips"}`
	require.NoError(t, f.InvokeService(context.Background(), "FitLayout.VIPS", data))
	assert.Equal(t, flclient.R+"page", body["parentIri"])
	params := body["params"].(map[string]any)
	assert.Equal(t, "vips", params["method"])
	_, parentInParams := params["parent"]
	assert.False(t, parentInParams)
	assert.Contains(t, output(), flclient.R+"tree")
}

func TestInvokeServiceRejectsBadData(t *testing.T) {
	f, _ := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	assert.Error(t, f.InvokeService(context.Background(), "svc", "{not json"))
}

func TestPrintPrefixes(t *testing.T) {
	f, output := testFeatures(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	require.NoError(t, f.PrintPrefixes())
	assert.Contains(t, output(), "PREFIX segm: <"+flclient.SEGM+">")
}

func TestNoSession(t *testing.T) {
	f := ServerFeatures{}
	_, err := f.Ping(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, f.PrintArtifacts(context.Background(), ""), ErrNoSession)
	assert.ErrorIs(t, f.RunQuery(context.Background(), "SELECT * WHERE {}"), ErrNoSession)
}
