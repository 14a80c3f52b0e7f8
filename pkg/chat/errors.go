package chat

import (
	"errors"
	"fmt"
)

// ErrNoUserMessage indicates a request whose message list contains no
// user-role message to forward.
var ErrNoUserMessage = errors.New("request contains no user message")

// ErrMissingModel indicates a request that named no model.
var ErrMissingModel = errors.New("request did not name a model")

// ModelNotAllowedError indicates a requested model that matched nothing on
// the configured allow-list.
type ModelNotAllowedError struct {
	// Model is the requested model name.
	Model string
}

func (e *ModelNotAllowedError) Error() string {
	return fmt.Sprintf("model %q is not on the allow-list", e.Model)
}
