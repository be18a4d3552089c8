package flclient

import (
	"context"
	"fmt"
	"net/http"
)

// Service describes an artifact service registered on the server, such as a
// page renderer or a segmentation algorithm.
type Service struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Params      []ServiceParam `json:"params,omitempty"`
}

type ServiceParam struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Services lists the artifact services the server offers.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.do(ctx, http.MethodGet, "api/service", nil, nil, &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// InvokeService runs a service in the repository and returns the descriptor
// of the artifact it created. parentIRI may be empty for services that take
// no input artifact, such as renderers.
func (c *Client) InvokeService(ctx context.Context, serviceID, parentIRI string, params map[string]any) (*Artifact, error) {
	body := map[string]any{
		"serviceId": serviceID,
		"params":    params,
	}
	if parentIRI != "" {
		body["parentIri"] = parentIRI
	}
	var artifact Artifact
	if err := c.do(ctx, http.MethodPost, c.repoPath("service/invoke"), nil, body, &artifact); err != nil {
		return nil, fmt.Errorf("invoke service %s: %w", serviceID, err)
	}
	return &artifact, nil
}
