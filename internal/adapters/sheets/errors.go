package sheets

import "errors"

// Sentinel kinds for remote read errors.
var (
	ErrRemoteRead = errors.New("remote read failed")
)
