package features

import (
	"cmp"
	"context"
	"encoding/json"
	"os"

	"github.com/fitlayout/flcurl/flclient"
)

func (s ServerFeatures) ListServices(ctx context.Context) ([]flclient.Service, error) {
	if s.Client == nil {
		return nil, ErrNoSession
	}
	return s.Client.Services(ctx)
}

func (s ServerFeatures) PrintServices(ctx context.Context) error {
	services, err := s.ListServices(ctx)
	if err != nil {
		return err
	}
	for _, service := range services {
		json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(service)
	}
	return nil
}
