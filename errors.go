package debom

import (
	"errors"
	"os"
)

// Common errors. Where possible, these alias os package errors for
// compatibility with os.IsNotExist, os.IsPermission, etc.
var (
	ErrNotFound   = os.ErrNotExist
	ErrPermission = os.ErrPermission
	ErrInvalid    = os.ErrInvalid

	ErrUnsupportedEncoding = errors.New("debom: unsupported encoding")
	ErrIsDir               = errors.New("debom: is a directory")
	ErrNotDir              = errors.New("debom: not a directory")
	ErrNotSupported        = errors.New("debom: feature not supported by this backend")
)
