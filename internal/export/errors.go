package export

import "errors"

var (
	// ErrInvalidRequest indicates an unknown kind or a scheduled export without a trigger.
	ErrInvalidRequest = errors.New("invalid export request")
	// ErrExportFailed indicates the report files could not be written. The
	// record store is left untouched.
	ErrExportFailed = errors.New("export failed")
	// ErrRotateFailed indicates the reports were written but clearing the
	// exported records did not persist.
	ErrRotateFailed = errors.New("export written but records not rotated")
)
