package features

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fitlayout/flcurl/flclient"
)

func (s ServerFeatures) PrintRepositories(ctx context.Context) error {
	if s.Client == nil {
		return ErrNoSession
	}
	repos, err := s.Client.Repositories(ctx)
	if err != nil {
		return err
	}
	for _, repo := range repos {
		json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(repo)
	}
	return nil
}

func (s ServerFeatures) PrintRepositoryInfo(ctx context.Context) error {
	if s.Client == nil {
		return ErrNoSession
	}
	info, err := s.Client.Info(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(info)
}

func (s ServerFeatures) CreateRepository(ctx context.Context, name, description string) error {
	if s.Client == nil {
		return ErrNoSession
	}
	created, err := s.Client.CreateRepository(ctx, name, description)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(created)
}

func (s ServerFeatures) DeleteRepository(ctx context.Context, id string) error {
	if s.Client == nil {
		return ErrNoSession
	}
	if err := s.Client.DeleteRepository(ctx, id); err != nil {
		return err
	}
	json.NewEncoder(cmp.Or(s.Out, os.Stdout)).Encode(map[string]string{"msg": "deleted", "repository": id})
	return nil
}

// PrintPrefixes prints the SPARQL prefix declarations the client assumes,
// ready to paste in front of a hand-written query.
func (s ServerFeatures) PrintPrefixes() error {
	_, err := fmt.Fprint(cmp.Or(s.Out, os.Stdout), flclient.DefaultPrefixString())
	return err
}
