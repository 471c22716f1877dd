/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package propstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Store is the public façade over a Contexts routing table. It owns
// exactly one Contexts for its lifetime, chosen at Init time from the
// shape of the filename argument, and never returns a Go error or
// panics from any of its exported methods: callers get sentinel values
// the way the C ABI this store stands in for would.
type Store struct {
	mu          sync.RWMutex
	contexts    Contexts
	initialized bool
	path        string
	writable    bool
}

// NewStore returns an uninitialized Store. Call Init before using it.
func NewStore() *Store {
	return &Store{}
}

// Init chooses a Contexts variant from the shape of path (directory
// with property_info, directory without it, or plain file) and opens
// it read-only. It is idempotent: a second call resets access instead
// of reinitializing routing state.
func (s *Store) Init(path string) bool {
	return s.init(path, false)
}

// AreaInit is Init's privileged counterpart: it creates and labels the
// backing mapping(s) if they do not already exist, opening them
// read-write for the single writer. fsetxattrFailed reports whether any
// extended-attribute labeling step failed; this does not by itself fail
// AreaInit, matching bionic's out-parameter contract for the same call.
func (s *Store) AreaInit(path string) (ok bool, fsetxattrFailed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.contexts.ResetAccess()
		return true, false
	}

	contexts, err := selectContexts(path)
	if err != nil {
		currentLogger().Errorw("propstore: AreaInit variant selection failed", "path", path, "error", err)
		return false, false
	}
	failed, err := contexts.Initialize(path, true)
	if err != nil {
		currentLogger().Errorw("propstore: AreaInit failed", "path", path, "error", err)
		return false, failed
	}
	s.contexts = contexts
	s.path = path
	s.writable = true
	s.initialized = true
	return true, failed
}

func (s *Store) init(path string, writable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.contexts.ResetAccess()
		return true
	}

	contexts, err := selectContexts(path)
	if err != nil {
		currentLogger().Errorw("propstore: Init variant selection failed", "path", path, "error", err)
		return false
	}
	if _, err := contexts.Initialize(path, writable); err != nil {
		currentLogger().Errorw("propstore: Init failed", "path", path, "error", err)
		return false
	}
	s.contexts = contexts
	s.path = path
	s.writable = writable
	s.initialized = true
	return true
}

// Close releases every backing mapping. After Close, the Store must be
// reinitialized with Init or AreaInit before further use.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	err := s.contexts.Close()
	s.initialized = false
	s.contexts = nil
	return err
}

func (s *Store) routeFor(name string) (*PropArea, *PropInfo) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, nil
	}
	area := s.contexts.GetPropAreaForName(name)
	if area == nil {
		currentLogger().Warnw("propstore: routing denied", "name", name)
		return nil, nil
	}
	return area, area.Find(name)
}

// Find routes name and returns its PropInfo, or nil if not found or the
// store is uninitialized.
func (s *Store) Find(name string) *PropInfo {
	_, pi := s.routeFor(name)
	return pi
}

// Get writes name's current value into dst and returns the number of
// bytes written. It writes nothing and returns 0 if name does not
// exist, never treating that as an error worth logging: "not set" is
// the ordinary case for Get.
func (s *Store) Get(name string, dst []byte) int {
	area, pi := s.routeFor(name)
	if pi == nil {
		return 0
	}
	if pi.isLong() {
		v := area.longValue(pi)
		return copy(dst, v)
	}
	_, n := area.ReadMutable(pi, dst)
	return n
}

// maxLoggedNameLen is the longest name Read looks up: a longer name is
// cut to this length for the lookup, and the diagnostic logs both the
// full and the truncated name.
const maxLoggedNameLen = PropNameMax - 1

// Read routes name, seqlock-reads its value into dst, and returns the
// number of bytes written together with whether the property was
// found. If name exceeds the name cap, it is truncated for the lookup
// and a diagnostic is logged, matching bionic's tolerant-but-noisy
// handling of malformed callers.
func (s *Store) Read(name string, dst []byte) (n int, ok bool) {
	lookupName := name
	if len(name) > maxLoggedNameLen {
		lookupName = name[:maxLoggedNameLen]
		currentLogger().Warnw("propstore: name truncated on Read", "name", name, "truncated", lookupName)
	}
	area, pi := s.routeFor(lookupName)
	if pi == nil {
		return 0, false
	}
	if pi.isLong() {
		v := area.longValue(pi)
		return copy(dst, v), true
	}
	_, n = area.ReadMutable(pi, dst)
	return n, true
}

// ReadCallback routes name and invokes cb with its current (name,
// value, serial), avoiding the seqlock retry loop entirely for
// read-only properties since their value can never change after
// creation.
func (s *Store) ReadCallback(name string, cb func(name, value string, serial uint32)) bool {
	area, pi := s.routeFor(name)
	if pi == nil {
		return false
	}
	if pi.isLong() {
		serial := atomic.LoadUint32(&pi.serial)
		cb(pi.Name(), area.longValue(pi), serial)
		return true
	}
	if isReadOnly(pi.Name()) {
		serial := atomic.LoadUint32(&pi.serial)
		buf := make([]byte, PropValueMax)
		n := copy(buf, pi.value[:serialLen(serial)])
		cb(pi.Name(), string(buf[:n]), serial)
		return true
	}
	buf := make([]byte, PropValueMax)
	serial, n := area.ReadMutable(pi, buf)
	cb(pi.Name(), string(buf[:n]), serial)
	return true
}

// serialArea returns the Contexts-designated area that every
// successful Add/Update bumps and wakes, regardless of which area
// physically holds the mutated record.
func (s *Store) serialArea() *PropArea {
	if !s.initialized {
		return nil
	}
	return s.contexts.GetSerialPropArea()
}

// Add creates a new property. It fails (returns false) if name is
// empty, if value exceeds the value cap for a non-read-only name, if
// the store is uninitialized, if the store is not the writer, or if
// routing denies name. On success the designated serial area's
// area-serial is bumped and any WaitAny waiters are woken, regardless
// of which area actually received the new record.
func (s *Store) Add(name, value string) bool {
	s.mu.RLock()
	initialized, writable := s.initialized, s.writable
	var area *PropArea
	var serialArea *PropArea
	if initialized {
		area = s.contexts.GetPropAreaForName(name)
		serialArea = s.contexts.GetSerialPropArea()
	}
	s.mu.RUnlock()

	if !initialized || !writable {
		currentLogger().Errorw("propstore: Add on uninitialized or read-only store", "name", name)
		return false
	}
	if len(name) == 0 {
		currentLogger().Warnw("propstore: Add rejected empty name")
		return false
	}
	if area == nil {
		currentLogger().Warnw("propstore: routing denied", "name", name)
		return false
	}

	readOnly := isReadOnly(name)
	if _, err := area.Add(name, value, readOnly); err != nil {
		currentLogger().Warnw("propstore: Add failed", "name", name, "error", err)
		return false
	}

	if serialArea != nil {
		serialArea.BumpSerial()
	}
	return true
}

// Update mutates an existing mutable PropInfo. It fails if value
// exceeds the value cap, if pi is nil, or if the store is uninitialized
// or read-only. As with Add, the designated serial area is bumped and
// woken on success, not necessarily the area holding pi.
func (s *Store) Update(pi *PropInfo, value string) bool {
	s.mu.RLock()
	initialized, writable := s.initialized, s.writable
	var area *PropArea
	var serialArea *PropArea
	if initialized && pi != nil {
		area = s.contexts.GetPropAreaForName(pi.Name())
		serialArea = s.contexts.GetSerialPropArea()
	}
	s.mu.RUnlock()

	if pi == nil || !initialized || !writable || area == nil {
		currentLogger().Errorw("propstore: Update rejected", "initialized", initialized, "writable", writable)
		return false
	}
	if err := area.Update(pi, value); err != nil {
		currentLogger().Warnw("propstore: Update failed", "name", pi.Name(), "error", err)
		return false
	}
	if serialArea != nil {
		serialArea.BumpSerial()
	}
	return true
}

// Wait blocks until pi's serial (or, when pi is nil, the serial area's
// area-serial) differs from oldSerial, or timeout elapses. It returns
// the new serial and true on a genuine change, or false on timeout.
// ctx, if non-nil, additionally bounds the wait by its deadline.
func (s *Store) Wait(ctx context.Context, pi *PropInfo, oldSerial uint32, timeout time.Duration) (uint32, bool) {
	addr, ok := s.waitAddr(pi)
	if !ok {
		return 0, false
	}

	deadline := time.Now().Add(timeout)
	if ctx != nil {
		if d, has := ctx.Deadline(); has && d.Before(deadline) {
			deadline = d
		}
	}

	for {
		current := atomic.LoadUint32(addr)
		if current != oldSerial {
			return current, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, false
		}
		if ctx != nil {
			select {
			case <-ctx.Done():
				return 0, false
			default:
			}
		}

		if err := futexWaitTimeout(addr, oldSerial, remaining.Nanoseconds()); err != nil && err != ErrFutexTimeout {
			// Futex unsupported on this platform (or a transient wait
			// error): fall back to a short sleep-poll rather than busy
			// spinning or blocking forever.
			time.Sleep(time.Millisecond)
		}
	}
}

func (s *Store) waitAddr(pi *PropInfo) (*uint32, bool) {
	if pi != nil {
		return &pi.serial, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, false
	}
	area := s.contexts.GetSerialPropArea()
	if area == nil {
		return nil, false
	}
	return area.header.areaSerialAddr(), true
}

// WaitAny is Wait(ctx, nil, oldSerial, timeout): it blocks on the
// serial area's area-serial, which every successful Add/Update in any
// area bumps.
func (s *Store) WaitAny(ctx context.Context, oldSerial uint32, timeout time.Duration) (uint32, bool) {
	return s.Wait(ctx, nil, oldSerial, timeout)
}

// FindNth returns the nth (zero-based) property encountered during a
// full Foreach traversal, or nil if the store has fewer than n+1
// properties. Order follows each area's DFS traversal and is stable
// for an unchanging store but not guaranteed across mutations.
func (s *Store) FindNth(n int) *PropInfo {
	var found *PropInfo
	count := 0
	s.Foreach(func(pi *PropInfo) {
		if found != nil {
			return
		}
		if count == n {
			found = pi
		}
		count++
	})
	return found
}

// Foreach visits every property in every area exactly once.
func (s *Store) Foreach(cb func(*PropInfo)) {
	s.mu.RLock()
	initialized := s.initialized
	contexts := s.contexts
	s.mu.RUnlock()
	if !initialized {
		return
	}
	contexts.ForEach(cb)
}
