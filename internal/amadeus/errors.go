package amadeus

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPaginationExceeded is returned when a cursor chain outlives the
// configured page ceiling instead of terminating.
var ErrPaginationExceeded = errors.New("pagination page limit exceeded")

// CredentialError reports that the token endpoint was unreachable or
// rejected the client credentials.
type CredentialError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acquiring credential: %v", e.Err)
	}
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// UpstreamError reports a transport failure or non-success status from a
// data call, carrying the failing URL.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("requesting %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("requesting %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ResolutionError reports that no city or airport matched the given keyword.
type ResolutionError struct {
	Keyword string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no location found for keyword %q", e.Keyword)
}

// isAuthFailure reports whether err is an upstream rejection of the current
// credential, which warrants one invalidate-and-retry.
func isAuthFailure(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusUnauthorized
}
