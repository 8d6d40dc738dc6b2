package baker

import "errors"

var (
	ErrNoBackends       = errors.New("baker: no compute backends attached")
	ErrKernelNotDefined = errors.New("baker: no kernel defined")
	ErrTableTooSmall    = errors.New("baker: table height must be >= backend count")
	ErrInterrupted      = errors.New("baker: interrupted while baking")
)
