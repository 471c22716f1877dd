//go:build !unix

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

import "fmt"

// CreateArea is unsupported outside unix: mmap'd shared-memory property
// areas assume a POSIX file descriptor and page cache.
func CreateArea(path string, capacity uint32, context string) (*PropArea, bool, error) {
	return nil, false, fmt.Errorf("propstore: CreateArea unsupported on this platform")
}

// OpenArea is unsupported outside unix.
func OpenArea(path string, writable bool) (*PropArea, error) {
	return nil, fmt.Errorf("propstore: OpenArea unsupported on this platform")
}
