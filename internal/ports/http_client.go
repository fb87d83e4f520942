package ports

import "net/http"

// HTTPClient executes the probe and single-shot upload requests.
// *http.Client satisfies this interface; tests substitute a recorder.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
