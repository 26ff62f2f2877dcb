package persist

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable indicates the backing store could not be reached.
var ErrUnavailable = errors.New("persistence unavailable")

// Gateway is an opaque document and scalar store. Documents are JSON blobs
// keyed by name; scalars are small text values. Missing keys are reported
// through the bool return, not as errors.
type Gateway interface {
	LoadDocument(ctx context.Context, key string) (json.RawMessage, bool, error)
	SaveDocument(ctx context.Context, key string, doc json.RawMessage) error
	RemoveDocument(ctx context.Context, key string) error

	ReadScalar(ctx context.Context, key string) (string, bool, error)
	// WriteScalar replaces any previous value.
	WriteScalar(ctx context.Context, key, value string) error
	RemoveScalar(ctx context.Context, key string) error
}
