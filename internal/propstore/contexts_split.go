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
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// splitFileExt is the well-known suffix on per-prefix files under
// <dir>/properties.d: a file named "sys.usb.prop" routes every name
// with the "sys.usb" prefix to its own PropArea.
const splitFileExt = ".prop"

// ContextsSplit discovers one area per prefix from filenames under
// <dir>/properties.d rather than a property_info side table, matching
// the layout an installation without a Serialized-style config would
// have used historically.
type ContextsSplit struct {
	mu       sync.RWMutex
	dir      string
	router   *prefixRouter
	areas    map[string]*PropArea
	serialOf string
}

func newContextsSplit() *ContextsSplit {
	return &ContextsSplit{areas: make(map[string]*PropArea)}
}

func (c *ContextsSplit) Initialize(dir string, writable bool) (fsetxattrFailed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dir = dir
	splitDir := filepath.Join(dir, splitDirName)
	entries, err := os.ReadDir(splitDir)
	if err != nil {
		return false, fmt.Errorf("propstore: read %s: %w", splitDir, err)
	}

	var prefixes []PrefixEntry
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), splitFileExt) {
			continue
		}
		prefix := strings.TrimSuffix(e.Name(), splitFileExt)
		names = append(names, prefix)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return false, fmt.Errorf("propstore: no %s files under %s", splitFileExt, splitDir)
	}

	for _, prefix := range names {
		path := filepath.Join(splitDir, prefix+splitFileExt)
		area, xattrFailed, aerr := openOrCreateArea(path, DefaultAreaCapacity, prefix, writable)
		if aerr != nil {
			return fsetxattrFailed, fmt.Errorf("propstore: split context %q: %w", prefix, aerr)
		}
		fsetxattrFailed = fsetxattrFailed || xattrFailed
		c.areas[prefix] = area
		prefixes = append(prefixes, PrefixEntry{Prefix: prefix, Context: prefix})
	}

	c.router = newPrefixRouter(prefixes)
	// The alphabetically first prefix's area is the designated serial
	// area: any deterministic, always-present choice works, since the
	// only requirement is that every Add/Update targets the same one.
	c.serialOf = names[0]
	return fsetxattrFailed, nil
}

func (c *ContextsSplit) GetPropAreaForName(name string) *PropArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.router == nil {
		return nil
	}
	ctx := c.router.contextFor(name)
	if ctx == "" {
		return nil
	}
	return c.areas[ctx]
}

func (c *ContextsSplit) GetSerialPropArea() *PropArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.areas[c.serialOf]
}

func (c *ContextsSplit) ForEach(cb func(*PropInfo)) {
	c.mu.RLock()
	names := make([]string, 0, len(c.areas))
	for name := range c.areas {
		names = append(names, name)
	}
	sort.Strings(names)
	areas := make([]*PropArea, 0, len(names))
	for _, name := range names {
		areas = append(areas, c.areas[name])
	}
	c.mu.RUnlock()
	for _, a := range areas {
		a.Foreach(cb)
	}
}

func (c *ContextsSplit) ResetAccess() {}

func (c *ContextsSplit) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for _, a := range c.areas {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
