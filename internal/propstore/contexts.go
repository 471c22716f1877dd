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
	"os"
	"path/filepath"
)

// Contexts is the routing layer between Store and the individual
// PropArea files. Three implementations share this capability set:
// ContextsSerialized (table-driven longest-prefix match, the primary
// production shape), ContextsSplit (one file per prefix, discovered
// from well-known filenames), and ContextsPreSplit (a single legacy
// area serving every name).
type Contexts interface {
	// Initialize opens the backing area file(s) at dir, creating missing
	// ones only when writable is set. writable selects whether Store expects to be the single privileged
	// writer; fsetxattrFailed reports a non-fatal labeling failure from
	// area creation.
	Initialize(dir string, writable bool) (fsetxattrFailed bool, err error)

	// GetPropAreaForName routes name to the PropArea that owns it, or
	// nil if no area's prefix covers name.
	GetPropAreaForName(name string) *PropArea

	// GetSerialPropArea returns the one distinguished area whose serial
	// WaitAny blocks on, regardless of which area a given Add/Update
	// physically mutates.
	GetSerialPropArea() *PropArea

	// ForEach visits every PropInfo in every area exactly once.
	ForEach(cb func(*PropInfo))

	// ResetAccess drops any cached per-caller access state so that a
	// process re-evaluates permissions after a privilege change.
	ResetAccess()

	// Close releases every area's mapping.
	Close() error
}

// propertyInfoFilename is the Serialized variant's marker file: its
// presence in dir is what selects Serialized over Split.
const propertyInfoFilename = "property_info"

// splitDirName holds the Split variant's well-known per-prefix files.
const splitDirName = "properties.d"

// selectContexts implements Store.Init's variant dispatch: a regular
// file selects PreSplit, a directory containing property_info selects
// Serialized, and any other directory selects Split.
func selectContexts(path string) (Contexts, error) {
	fi, err := os.Stat(path)
	switch {
	case err == nil && !fi.IsDir():
		return newContextsPreSplit(), nil
	case err == nil && fi.IsDir():
		if _, ierr := os.Stat(filepath.Join(path, propertyInfoFilename)); ierr == nil {
			return newContextsSerialized(), nil
		}
		return newContextsSplit(), nil
	case os.IsNotExist(err):
		// Nothing on disk yet: a path that doesn't exist is not a
		// directory, so this takes the PreSplit branch, a single area
		// file. A privileged writer that wants Serialized or Split must
		// create the directory (and, for Serialized, its property_info
		// file) first.
		return newContextsPreSplit(), nil
	default:
		return nil, err
	}
}
