package errs

import "github.com/pkg/errors"

var ErrInvalidEvent = errors.New("invalid event")
