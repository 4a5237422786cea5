package utils

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether err was caused by an exceeded deadline, either a
// context deadline or a transport-level timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
