package flclient

import (
	"context"
	"fmt"
	"net/http"
)

// QueryResult holds SPARQL JSON results as returned by the repository
// query endpoint.
type QueryResult struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Query runs a SPARQL query against the repository.
func (c *Client) Query(ctx context.Context, sparql string) (*QueryResult, error) {
	body := map[string]string{"query": sparql}
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, c.repoPath("repository/query"), nil, body, &result); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &result, nil
}
