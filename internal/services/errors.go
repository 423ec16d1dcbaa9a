package services

import "errors"

// Report service errors
var (
	// Session errors
	ErrNoDataset      = errors.New("no dataset uploaded for this session")
	ErrDatasetExpired = errors.New("uploaded dataset has expired, upload the file again")
	ErrInvalidSession = errors.New("invalid session id")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
