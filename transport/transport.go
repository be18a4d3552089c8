package transport

import (
	"net/http"
)

// Client builds the HTTP client used for all FitLayout requests. Configured
// headers are injected into every request that does not already carry them.
func Client(headers []string) *http.Client {
	if len(headers) == 0 {
		return &http.Client{}
	}
	return &http.Client{Transport: &flcurlRoundTripper{headers: headers}}
}
