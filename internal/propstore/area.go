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
	"fmt"
)

// PropArea is one memory-mapped property file: a header plus an
// append-only slab holding trie nodes and PropInfo records. A process
// opens the same file either read-write (the single privileged writer)
// or read-only (every reader), and both views share identical byte
// layout so offsets computed by the writer are meaningful to a reader
// that mapped the file independently.
type PropArea struct {
	mem      []byte
	header   *AreaHeader
	path     string
	writable bool
	closer   func() error
}

// wrapArea builds a PropArea over an already-mapped, already-validated
// region. It is the common tail of CreateArea and OpenArea.
func wrapArea(mem []byte, path string, writable bool, closer func() error) *PropArea {
	return &PropArea{
		mem:      mem,
		header:   headerAt(mem),
		path:     path,
		writable: writable,
		closer:   closer,
	}
}

// Path returns the backing file path the area was created or opened
// from.
func (a *PropArea) Path() string { return a.path }

// Writable reports whether this mapping may mutate the area. Readers
// that map a file O_RDONLY get a PropArea with Writable() == false;
// calling Add or Update on one is a programming error caught by the
// PropArea itself rather than relied upon from the mmap protection bits
// alone, since some platforms cannot enforce read-only mappings the
// process has permission to remap writable.
func (a *PropArea) Writable() bool { return a.writable }

// Serial returns the area-wide change counter that WaitAny blocks on.
func (a *PropArea) Serial() uint32 { return a.header.AreaSerial() }

// Find looks up name and returns its PropInfo, or nil if no such
// property has been added to this area.
func (a *PropArea) Find(name string) *PropInfo {
	return a.find(name)
}

// Add creates a new property record. It fails with ErrDuplicateName if
// name already exists in this area, ErrInvalidName/ErrInvalidValue on
// bad input, or ErrAreaFull if the slab has no room left.
//
// Add does not bump this area's serial or wake any futex waiter: the
// routing model always directs those notifications at the
// Contexts-designated serial area, which is Store's responsibility to
// locate and bump after Add succeeds here.
func (a *PropArea) Add(name, value string, readOnly bool) (*PropInfo, error) {
	if !a.writable {
		return nil, ErrNotInitialized
	}
	if len(name) == 0 || len(name) > PropNameMax-1 {
		return nil, ErrInvalidName
	}
	if !readOnly && len(value) > PropValueMax-1 {
		return nil, ErrInvalidValue
	}
	return a.add(name, value, readOnly)
}

// BumpSerial advances this area's change counter and wakes anyone
// blocked in WaitAny on it. Exported for Store, which is the only
// caller with enough context (the Contexts-designated serial area) to
// know when this should happen.
func (a *PropArea) BumpSerial() uint32 {
	serial := a.header.bumpAreaSerial()
	futexWake(a.header.areaSerialAddr(), maxWakers)
	return serial
}

// Foreach visits every property in the area in an unspecified but
// deterministic (for a given tree shape) order.
func (a *PropArea) Foreach(cb func(*PropInfo)) {
	a.foreach(cb)
}

// Close unmaps the area's memory and releases the backing file
// descriptor, if the platform-specific opener supplied one.
func (a *PropArea) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer()
	a.closer = nil
	return err
}

func (a *PropArea) String() string {
	return fmt.Sprintf("PropArea{path=%s, writable=%t, watermark=%d/%d}",
		a.path, a.writable, a.header.Watermark(), a.header.Capacity())
}
