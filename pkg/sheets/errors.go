package sheets

import "fmt"

// NetworkError covers transport failures and non-success HTTP statuses.
// The request may or may not have reached the backend.
type NetworkError struct {
	Op     string
	Status int // 0 when the transport itself failed
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sheets: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sheets: %s: unexpected status %d", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a well-formed response that explicitly flags failure.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// MalformedResponseError is a response body that does not match the
// expected success envelope.
type MalformedResponseError struct {
	Op     string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("sheets: %s: malformed response: %s", e.Op, e.Reason)
}
