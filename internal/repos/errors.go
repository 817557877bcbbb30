package repos

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup whose target row does not exist. Handlers map
// it to 404.
var ErrNotFound = errors.New("not found")

func errNotFound(id string) error { return fmt.Errorf("%w: %s", ErrNotFound, id) }
