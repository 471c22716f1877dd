//go:build unix

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
	"os"

	"golang.org/x/sys/unix"
)

// propertyContextXattr is the extended attribute a privileged writer
// applies to a freshly created area file so that a mandatory access
// control policy can route reads/writes by security label rather than
// by filesystem permissions alone. Labeling a file that was never
// stamped is not fatal: it degrades to discretionary permissions,
// mirrored by CreateArea's fsetxattrFailed return value.
const propertyContextXattr = "security.selinux"

// CreateArea creates and mmaps a brand-new property area file at path
// with the given capacity, initializes its header, and optionally
// applies a security label. It fails if path already exists.
//
// The returned fsetxattrFailed flag mirrors AreaInit's own
// out-parameter: labeling failure (for example because the filesystem
// lacks xattr support) is reported to the caller but does not by
// itself fail area creation.
func CreateArea(path string, capacity uint32, context string) (area *PropArea, fsetxattrFailed bool, err error) {
	if capacity < minAreaCapacity {
		capacity = minAreaCapacity
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("propstore: create area file %s: %w", path, err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(path)
	}

	if err := f.Truncate(int64(capacity)); err != nil {
		cleanup()
		return nil, false, fmt.Errorf("propstore: truncate area file %s: %w", path, err)
	}

	if context != "" {
		if xerr := unix.Fsetxattr(int(f.Fd()), propertyContextXattr, []byte(context), 0); xerr != nil {
			fsetxattrFailed = true
			logger := currentLogger()
			logger.Warnw("fsetxattr failed labeling property area", "path", path, "error", xerr)
		}
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fsetxattrFailed, fmt.Errorf("propstore: mmap area file %s: %w", path, err)
	}

	h := headerAt(mem)
	copy(h.magic[:], areaMagic)
	h.version = areaVersion
	h.capacity = capacity
	h.watermark = areaHeaderSize
	h.rootOffset = 0
	h.areaSerial = 0

	area = wrapArea(mem, path, true, func() error {
		if err := unix.Munmap(mem); err != nil {
			return err
		}
		return f.Close()
	})
	return area, fsetxattrFailed, nil
}

// OpenArea mmaps an existing property area file. writable selects
// PROT_READ|PROT_WRITE (the single writer reopening its own area, for
// example after a restart) versus PROT_READ (every reader).
func OpenArea(path string, writable bool) (*PropArea, error) {
	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("propstore: open area file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("propstore: stat area file %s: %w", path, err)
	}
	size := info.Size()
	if size < int64(areaHeaderSize) {
		f.Close()
		return nil, fmt.Errorf("%w: file %s too small (%d bytes)", ErrBadAreaHeader, path, size)
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("propstore: mmap area file %s: %w", path, err)
	}

	h := headerAt(mem)
	if err := h.validate(len(mem)); err != nil {
		unix.Munmap(mem)
		f.Close()
		return nil, err
	}

	return wrapArea(mem, path, writable, func() error {
		if err := unix.Munmap(mem); err != nil {
			return err
		}
		return f.Close()
	}), nil
}
