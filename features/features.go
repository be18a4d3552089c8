package features

import (
	"errors"
	"os"

	"github.com/fitlayout/flcurl/flclient"
)

var (
	ErrNoSession = errors.New("no session")
)

// ServerFeatures exposes the repository operations behind the one-shot flags
// and the interactive commands. Structured results are printed as JSON
// lines on Out, or stdout when Out is nil.
type ServerFeatures struct {
	Client *flclient.Client
	Out    *os.File
}
