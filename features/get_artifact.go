package features

import (
	"cmp"
	"context"
	"encoding/json"
	"os"
)

func (s ServerFeatures) PrintArtifact(ctx context.Context, iri string) error {
	if s.Client == nil {
		return ErrNoSession
	}
	metadata, err := s.Client.Artifact(ctx, iri)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(metadata)
}

func (s ServerFeatures) DeleteArtifact(ctx context.Context, iri string) error {
	if s.Client == nil {
		return ErrNoSession
	}
	if err := s.Client.DeleteArtifact(ctx, iri); err != nil {
		return err
	}
	json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(map[string]string{"msg": "deleted", "iri": iri})
	return nil
}
