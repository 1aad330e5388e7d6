package transport

import "errors"

// Sentinel errors surfaced by the transport. Callers compare with errors.Is.
var (
	ErrAlreadyOpen      = errors.New("transport: a port is already open")
	ErrNotOpen          = errors.New("transport: no port is open")
	ErrDeviceNotFound   = errors.New("transport: device not found")
	ErrPermissionDenied = errors.New("transport: permission denied opening device")
	ErrPortBusy         = errors.New("transport: device busy")
	ErrPortIO           = errors.New("transport: port I/O error")
	ErrInvalidConfig    = errors.New("transport: invalid configuration")
	ErrInvalidBaudRate  = errors.New("transport: invalid baud rate")
	ErrAmbiguousPort    = errors.New("transport: multiple candidate ports found, specify one explicitly")
)
