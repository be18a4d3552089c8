package features

import (
	"cmp"
	"context"
	"encoding/json"
	"os"

	"github.com/fitlayout/flcurl/flclient"
)

func (s ServerFeatures) ListArtifacts(ctx context.Context, artifactType string) ([]flclient.Artifact, error) {
	if s.Client == nil {
		return nil, ErrNoSession
	}
	return s.Client.Artifacts(ctx, artifactType)
}

func (s ServerFeatures) PrintArtifacts(ctx context.Context, artifactType string) error {
	artifacts, err := s.ListArtifacts(ctx, artifactType)
	if err != nil {
		return err
	}
	for _, artifact := range artifacts {
		json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(artifact)
	}
	return nil
}
