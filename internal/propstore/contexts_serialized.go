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
	"path/filepath"
	"sync"
)

// ContextsSerialized is the primary production Contexts variant: a
// property_info file names a fixed set of contexts, each backed by one
// PropArea, and a longest-prefix table routes names to a context.
type ContextsSerialized struct {
	mu       sync.RWMutex
	dir      string
	cfg      *PropertyInfoConfig
	router   *prefixRouter
	areas    map[string]*PropArea
	serialOf string
}

func newContextsSerialized() *ContextsSerialized {
	return &ContextsSerialized{areas: make(map[string]*PropArea)}
}

func (c *ContextsSerialized) Initialize(dir string, writable bool) (fsetxattrFailed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dir = dir
	cfgPath := filepath.Join(dir, propertyInfoFilename)
	cfg, err := loadPropertyInfoConfig(cfgPath)
	if err != nil {
		return false, err
	}
	c.cfg = cfg
	c.router = newPrefixRouter(cfg.Prefixes)

	for _, ctx := range cfg.Contexts {
		path := filepath.Join(dir, ctx.Path)
		area, xattrFailed, aerr := openOrCreateArea(path, ctx.Capacity, ctx.Name, writable)
		if aerr != nil {
			return fsetxattrFailed, fmt.Errorf("propstore: context %q: %w", ctx.Name, aerr)
		}
		fsetxattrFailed = fsetxattrFailed || xattrFailed
		c.areas[ctx.Name] = area
		if ctx.Serial {
			c.serialOf = ctx.Name
		}
	}
	return fsetxattrFailed, nil
}

func (c *ContextsSerialized) GetPropAreaForName(name string) *PropArea {
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

func (c *ContextsSerialized) GetSerialPropArea() *PropArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.areas[c.serialOf]
}

func (c *ContextsSerialized) ForEach(cb func(*PropInfo)) {
	c.mu.RLock()
	areas := make([]*PropArea, 0, len(c.areas))
	if c.cfg != nil {
		for _, ctx := range c.cfg.Contexts {
			if a := c.areas[ctx.Name]; a != nil {
				areas = append(areas, a)
			}
		}
	}
	c.mu.RUnlock()
	for _, a := range areas {
		a.Foreach(cb)
	}
}

func (c *ContextsSerialized) ResetAccess() {
	// Serialized areas are mapped once at Initialize time with no
	// per-caller access grants to drop; nothing to do beyond what a
	// future ACL layer would hook here.
}

func (c *ContextsSerialized) Close() error {
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

// openOrCreateArea opens path if it already exists. Otherwise, for a
// writable open only, it creates it with the given capacity and
// security context label; a read-only open of a missing or invalid file
// fails.
func openOrCreateArea(path string, capacity uint32, context string, writable bool) (*PropArea, bool, error) {
	area, err := OpenArea(path, writable)
	if err == nil {
		return area, false, nil
	}
	if !writable {
		return nil, false, err
	}
	if capacity == 0 {
		capacity = DefaultAreaCapacity
	}
	return CreateArea(path, capacity, context)
}
