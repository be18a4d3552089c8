package flclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Artifact describes a single artifact stored in the repository.
type Artifact struct {
	IRI       string `json:"iri"`
	Type      string `json:"type,omitempty"`
	ParentIRI string `json:"parentIri,omitempty"`
	Label     string `json:"label,omitempty"`
	Creator   string `json:"creator,omitempty"`
	CreatedOn string `json:"createdOn,omitempty"`
}

// Artifacts lists the artifacts in the repository. With an empty type the
// server's artifact list is returned as-is; with a type (prefixed name or
// full IRI) a SPARQL query selects matching subjects.
func (c *Client) Artifacts(ctx context.Context, artifactType string) ([]Artifact, error) {
	if artifactType == "" {
		var artifacts []Artifact
		if err := c.do(ctx, http.MethodGet, c.repoPath("artifact"), nil, nil, &artifacts); err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		return artifacts, nil
	}

	query := DefaultPrefixString() +
		fmt.Sprintf("SELECT ?a WHERE { ?a rdf:type %s }", typeRef(artifactType))
	result, err := c.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list artifacts by type: %w", err)
	}
	var artifacts []Artifact
	for _, row := range result.Results.Bindings {
		artifacts = append(artifacts, Artifact{IRI: row["a"].Value, Type: artifactType})
	}
	return artifacts, nil
}

// Artifact fetches the full metadata of one artifact. The shape of the
// metadata depends on the artifact type, so it is returned undecoded.
func (c *Client) Artifact(ctx context.Context, iri string) (map[string]any, error) {
	var metadata map[string]any
	query := url.Values{"iri": []string{iri}}
	if err := c.do(ctx, http.MethodGet, c.repoPath("artifact/item"), query, nil, &metadata); err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return metadata, nil
}

// DeleteArtifact removes one artifact from the repository.
func (c *Client) DeleteArtifact(ctx context.Context, iri string) error {
	query := url.Values{"iri": []string{iri}}
	if err := c.do(ctx, http.MethodDelete, c.repoPath("artifact/item"), query, nil, nil); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}
