package propstore

import "errors"

// ErrFutexTimeout is returned by futexWaitTimeout when the wait times out.
var ErrFutexTimeout = errors.New("propstore: futex wait timed out")

// ErrFutexUnsupported is returned by the futex stub on platforms without
// a Linux-compatible futex(2) syscall.
var ErrFutexUnsupported = errors.New("propstore: futex operations not supported on this platform")
