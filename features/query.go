package features

import (
	"cmp"
	"context"
	"encoding/json"
	"os"
)

// RunQuery runs a SPARQL query and prints one JSON object per result row,
// variable names mapped to their bound values.
func (s ServerFeatures) RunQuery(ctx context.Context, sparql string) error {
	if s.Client == nil {
		return ErrNoSession
	}
	result, err := s.Client.Query(ctx, sparql)
	if err != nil {
		return err
	}
	out := cmp.Or(s.Out, os.Stdout)
	for _, bindings := range result.Results.Bindings {
		row := make(map[string]string, len(bindings))
		for name, binding := range bindings {
			row[name] = binding.Value
		}
		json.NewEncoder(out).Encode(row)
	}
	return nil
}
