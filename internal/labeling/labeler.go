// Package labeling defines the pluggable image-labeling capability.
//
// Labeling is an optional collaborator: implementations may call out to a
// local model or external service, and the library works identically with
// the no-op implementation. Returned labels are deduplicated, ready to be
// applied as tag names.
package labeling

import "context"

// Labeler produces label strings for an image.
type Labeler interface {
	Label(ctx context.Context, data []byte, mimeType string) ([]string, error)
}

// Noop is a Labeler that labels nothing.
type Noop struct{}

// Label implements Labeler with no labels.
func (Noop) Label(_ context.Context, _ []byte, _ string) ([]string, error) {
	return nil, nil
}
