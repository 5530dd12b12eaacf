package observability

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic recovers from a panic and logs it with structured logging.
// It must be deferred directly:
//
//	defer observability.RecoverPanic(log, "watch loop")
//
// The panic is not re-raised.
func RecoverPanic(log *logrus.Logger, context string) {
	if r := recover(); r != nil {
		log.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// MustRecover converts a recovered value to an error, or nil when r is nil.
//
//	defer func() {
//	    if perr := observability.MustRecover(recover()); perr != nil {
//	        err = perr
//	    }
//	}()
//
// The stack trace is not included in the error.
func MustRecover(r any) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
