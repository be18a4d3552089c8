package features

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// InvokeService runs a service with JSON-encoded parameters, as supplied by
// the -d flag. The "parent" key, when present, selects the input artifact.
func (s ServerFeatures) InvokeService(ctx context.Context, serviceID, data string) error {
	params := map[string]any{}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &params); err != nil {
			return fmt.Errorf("unmarshal service parameters: %w", err)
		}
	}
	parent, _ := params["parent"].(string)
	delete(params, "parent")
	return s.InvokeService1(ctx, serviceID, parent, params)
}

func (s ServerFeatures) InvokeService1(ctx context.Context, serviceID, parentIRI string, params map[string]any) error {
	if s.Client == nil {
		return ErrNoSession
	}
	artifact, err := s.Client.InvokeService(ctx, serviceID, parentIRI, params)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(artifact)
}
