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
	"sync"
)

// ContextsPreSplit is the legacy variant: exactly one PropArea serves
// every property name, taken when Store.Init's filename argument names
// a regular file rather than a directory.
type ContextsPreSplit struct {
	mu   sync.RWMutex
	area *PropArea
}

func newContextsPreSplit() *ContextsPreSplit {
	return &ContextsPreSplit{}
}

func (c *ContextsPreSplit) Initialize(path string, writable bool) (fsetxattrFailed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	area, xattrFailed, aerr := openOrCreateArea(path, DefaultAreaCapacity, "", writable)
	if aerr != nil {
		return false, fmt.Errorf("propstore: presplit area %s: %w", path, aerr)
	}
	c.area = area
	return xattrFailed, nil
}

func (c *ContextsPreSplit) GetPropAreaForName(name string) *PropArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.area
}

func (c *ContextsPreSplit) GetSerialPropArea() *PropArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.area
}

func (c *ContextsPreSplit) ForEach(cb func(*PropInfo)) {
	c.mu.RLock()
	area := c.area
	c.mu.RUnlock()
	if area != nil {
		area.Foreach(cb)
	}
}

func (c *ContextsPreSplit) ResetAccess() {}

func (c *ContextsPreSplit) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.area == nil {
		return nil
	}
	return c.area.Close()
}
