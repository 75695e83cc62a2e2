package arxiv

import (
	"errors"
	"fmt"
)

// Common errors returned by the arXiv client.
var (
	// ErrNotFound indicates the paper was not found on arXiv.
	ErrNotFound = errors.New("not found on arXiv")

	// ErrTooLarge indicates a fetched document exceeded the size ceiling.
	ErrTooLarge = errors.New("document exceeds size ceiling")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with arXiv")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError represents an HTTP-level error from the arXiv API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arXiv API error (status %d): %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates a missing paper.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
