package simulator

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDial = errors.New("dial target failed")
	ErrSend = errors.New("send datagram failed")
)
