package flclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// RepositoryInfo describes an artifact repository as reported by the server.
type RepositoryInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	CreatedOn   string `json:"createdOn,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Repositories lists the repositories available on the server.
func (c *Client) Repositories(ctx context.Context) ([]RepositoryInfo, error) {
	var repos []RepositoryInfo
	if err := c.do(ctx, http.MethodGet, "api/repository", nil, nil, &repos); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

// Info fetches the metadata of the repository this client is bound to.
func (c *Client) Info(ctx context.Context) (*RepositoryInfo, error) {
	var info RepositoryInfo
	if err := c.do(ctx, http.MethodGet, c.repoPath("repository/info"), nil, nil, &info); err != nil {
		return nil, fmt.Errorf("repository info: %w", err)
	}
	return &info, nil
}

// CreateRepository creates a repository with a client-generated id and
// returns its descriptor.
func (c *Client) CreateRepository(ctx context.Context, name, description string) (*RepositoryInfo, error) {
	repo := RepositoryInfo{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	}
	var created RepositoryInfo
	if err := c.do(ctx, http.MethodPost, "api/repository", nil, repo, &created); err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	if created.ID == "" {
		created = repo
	}
	return &created, nil
}

// DeleteRepository removes a repository by id.
func (c *Client) DeleteRepository(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "api/repository/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	return nil
}
