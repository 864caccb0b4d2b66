package physics

import (
	"fmt"

	"github.com/san-kum/hoopsim/internal/dynamo"
)

// ErrInvalidParameter is returned for a non-positive mass, radius or dt, a
// negative gravity, or any non-finite input. The call has no effect and may
// be retried with valid input. It matches dynamo.ErrParameterBounds.
var ErrInvalidParameter = fmt.Errorf("physics: invalid parameter: %w", dynamo.ErrParameterBounds)
