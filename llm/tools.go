package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fitlayout/flcurl/features"
	"github.com/fitlayout/flcurl/flclient"
	"github.com/openai/openai-go"
)

// repositoryTool is a FitLayout operation exposed to the model as a
// function tool.
type repositoryTool struct {
	name        string
	description string
	parameters  openai.FunctionParameters
	run         func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error)
}

func (t repositoryTool) param() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        t.name,
			Description: openai.String(t.description),
			Parameters:  t.parameters,
		},
	}
}

func repositoryTools() []repositoryTool {
	return []repositoryTool{
		{
			name:        "list_artifacts",
			description: "List artifacts in the repository, optionally filtered by RDF type (prefixed name such as box:Page or segm:AreaTree, or a full IRI)",
			parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{"type": "string", "description": "artifact type filter"},
				},
			},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				artifactType, _ := args["type"].(string)
				artifacts, err := f.ListArtifacts(ctx, artifactType)
				if err != nil {
					return "", err
				}
				return encode(artifacts)
			},
		},
		{
			name:        "get_artifact",
			description: "Fetch the full metadata of one artifact by IRI",
			parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"iri": map[string]any{"type": "string", "description": "artifact IRI"},
				},
				"required": []string{"iri"},
			},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				if f.Client == nil {
					return "", features.ErrNoSession
				}
				iri, _ := args["iri"].(string)
				metadata, err := f.Client.Artifact(ctx, iri)
				if err != nil {
					return "", err
				}
				return encode(metadata)
			},
		},
		{
			name:        "sparql_query",
			description: "Run a SPARQL SELECT query against the repository. The rdf, rdfs, r, box and segm prefixes are declared automatically.",
			parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "SPARQL query without prefix declarations"},
				},
				"required": []string{"query"},
			},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				if f.Client == nil {
					return "", features.ErrNoSession
				}
				query, _ := args["query"].(string)
				result, err := f.Client.Query(ctx, flclient.DefaultPrefixString()+query)
				if err != nil {
					return "", err
				}
				return encode(result.Results.Bindings)
			},
		},
		{
			name:        "list_services",
			description: "List the artifact services the server offers (renderers, segmentation algorithms) with their parameters",
			parameters:  openai.FunctionParameters{"type": "object", "properties": map[string]any{}},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				services, err := f.ListServices(ctx)
				if err != nil {
					return "", err
				}
				return encode(services)
			},
		},
		{
			name:        "invoke_service",
			description: "Invoke an artifact service. Produces a new artifact in the repository.",
			parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"service": map[string]any{"type": "string", "description": "service id"},
					"parent":  map[string]any{"type": "string", "description": "input artifact IRI, empty for renderers"},
					"params":  map[string]any{"type": "object", "description": "service parameters"},
				},
				"required": []string{"service"},
			},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				if f.Client == nil {
					return "", features.ErrNoSession
				}
				service, _ := args["service"].(string)
				parent, _ := args["parent"].(string)
				params, _ := args["params"].(map[string]any)
				artifact, err := f.Client.InvokeService(ctx, service, parent, params)
				if err != nil {
					return "", err
				}
				return encode(artifact)
			},
		},
		{
			name:        "repository_info",
			description: "Fetch the metadata of the current repository",
			parameters:  openai.FunctionParameters{"type": "object", "properties": map[string]any{}},
			run: func(ctx context.Context, f features.ServerFeatures, args map[string]any) (string, error) {
				if f.Client == nil {
					return "", features.ErrNoSession
				}
				info, err := f.Client.Info(ctx)
				if err != nil {
					return "", err
				}
				return encode(info)
			},
		},
	}
}

func encode(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(out), nil
}
