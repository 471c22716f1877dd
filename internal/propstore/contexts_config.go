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
	"sort"

	"gopkg.in/yaml.v3"
)

// PrefixEntry maps one name prefix to the context that owns names
// matching it. The router picks the entry with the longest matching
// prefix, exactly as bionic's PrefixMatch does.
type PrefixEntry struct {
	Prefix  string `yaml:"prefix"`
	Context string `yaml:"context"`
}

// ContextEntry describes one backing area file for the Serialized
// variant: its context name, the file it is stored in relative to the
// property directory, and the capacity to give it if it does not yet
// exist.
type ContextEntry struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Capacity uint32 `yaml:"capacity"`
	// Serial marks the one context whose area is returned by
	// GetSerialPropArea. Exactly one entry must set this.
	Serial bool `yaml:"serial,omitempty"`
}

// PropertyInfoConfig is the decoded property_info YAML document that
// drives ContextsSerialized.
type PropertyInfoConfig struct {
	Prefixes []PrefixEntry  `yaml:"prefixes"`
	Contexts []ContextEntry `yaml:"contexts"`
}

// loadPropertyInfoConfig reads and validates the property_info file at
// path: prefixes must be non-empty and reference a defined context,
// contexts must have unique names, and exactly one context must be
// marked serial.
func loadPropertyInfoConfig(path string) (*PropertyInfoConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("propstore: read %s: %w", path, err)
	}

	var cfg PropertyInfoConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("propstore: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("propstore: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *PropertyInfoConfig) validate() error {
	if len(c.Contexts) == 0 {
		return fmt.Errorf("no contexts defined")
	}
	byName := make(map[string]bool, len(c.Contexts))
	serialCount := 0
	for _, ctx := range c.Contexts {
		if ctx.Name == "" || ctx.Path == "" {
			return fmt.Errorf("context entry missing name or path")
		}
		if byName[ctx.Name] {
			return fmt.Errorf("duplicate context name %q", ctx.Name)
		}
		byName[ctx.Name] = true
		if ctx.Serial {
			serialCount++
		}
	}
	if serialCount != 1 {
		return fmt.Errorf("exactly one context must be marked serial, found %d", serialCount)
	}
	if len(c.Prefixes) == 0 {
		return fmt.Errorf("no prefixes defined")
	}
	for _, p := range c.Prefixes {
		if p.Prefix == "" {
			return fmt.Errorf("empty prefix entry")
		}
		if !byName[p.Context] {
			return fmt.Errorf("prefix %q references undefined context %q", p.Prefix, p.Context)
		}
	}
	return nil
}

// prefixRouter answers longest-prefix-match queries over a
// PropertyInfoConfig's prefix list.
type prefixRouter struct {
	entries []PrefixEntry // sorted by descending prefix length
}

func newPrefixRouter(entries []PrefixEntry) *prefixRouter {
	sorted := make([]PrefixEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &prefixRouter{entries: sorted}
}

// contextFor returns the context name owning name, or "" if no prefix
// matches.
func (r *prefixRouter) contextFor(name string) string {
	for _, e := range r.entries {
		if len(name) >= len(e.Prefix) && name[:len(e.Prefix)] == e.Prefix {
			return e.Context
		}
	}
	return ""
}
