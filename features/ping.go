package features

import (
	"cmp"
	"context"
	"fmt"
	"os"
)

func (s ServerFeatures) Ping(ctx context.Context) (string, error) {
	if s.Client == nil {
		return "", ErrNoSession
	}
	return s.Client.Ping(ctx)
}

// PrintPing pings the server and prints the result on one line, in the
// "Pinging FitLayout server...<answer>" form the session starts with.
func (s ServerFeatures) PrintPing(ctx context.Context) error {
	out := cmp.Or(s.Out, os.Stdout)
	fmt.Fprint(out, "Pinging FitLayout server...")
	pong, err := s.Ping(ctx)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	fmt.Fprintln(out, pong)
	return nil
}
