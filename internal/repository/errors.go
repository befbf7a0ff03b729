package repository

import "errors"

// ErrCorrupt is returned when stored content cannot be decoded
var ErrCorrupt = errors.New("corrupt storage")
