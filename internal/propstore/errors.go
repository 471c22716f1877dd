package propstore

import "errors"

// Sentinel errors returned by the lower-level PropArea/Contexts/Area
// APIs. Store, the public façade, never returns these directly — it
// converts them into C-ABI-shaped sentinel values (-1, "", nil, false),
// logging a diagnostic first where called for.
var (
	// ErrNotInitialized is returned when an operation is attempted
	// before Store.Init or Store.AreaInit has succeeded.
	ErrNotInitialized = errors.New("propstore: not initialized")

	// ErrAreaFull is returned by PropArea.add when the area cannot
	// accommodate a new record within its fixed mmap size.
	ErrAreaFull = errors.New("propstore: area is full")

	// ErrRoutingDenied names the case where no Contexts prefix claims a
	// property name. Store reports that case with a logged warning and a
	// sentinel return; no function in this package returns this value.
	ErrRoutingDenied = errors.New("propstore: no context claims this name")

	// ErrInvalidName is returned for an empty name or a name that
	// exceeds PropNameMax-1 bytes where truncation is not acceptable.
	ErrInvalidName = errors.New("propstore: invalid property name")

	// ErrInvalidValue is returned when a mutable value exceeds
	// PropValueMax-1 bytes.
	ErrInvalidValue = errors.New("propstore: value too long")

	// ErrReadOnly is returned when Update targets a read-only PropInfo.
	ErrReadOnly = errors.New("propstore: property is read-only")

	// ErrWaitTimeout names a timed-out wait. The futex layer itself
	// reports ErrFutexTimeout, which Store.Wait turns into a plain false
	// return; no function in this package returns this value.
	ErrWaitTimeout = errors.New("propstore: wait timed out")

	// ErrDuplicateName is returned by PropArea.add for a name that
	// already exists in the area's trie: names are never duplicated.
	ErrDuplicateName = errors.New("propstore: duplicate property name")

	// ErrBadAreaHeader is returned when an mmap'd file does not carry a
	// valid area header (magic/version mismatch, truncated file).
	ErrBadAreaHeader = errors.New("propstore: invalid property area header")
)
