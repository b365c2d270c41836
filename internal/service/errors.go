package service

import (
	"context"
	"errors"
	"net"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// isConnectionError reports whether err is a connection-class failure:
// refused, timed out, or unresolvable. These are expected operational
// states for optional dependencies and are logged at debug level; anything
// else from an external service logs as a warning.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// degradedLevel picks the log level for a best-effort call failure
func degradedLevel(err error) zapcore.Level {
	if isConnectionError(err) {
		return zap.DebugLevel
	}
	return zap.WarnLevel
}
