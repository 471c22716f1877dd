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

// Package propstore implements a shared-memory system-property store: a
// process-wide registry of short (name, value) strings, readable
// lock-free by any number of reader processes and mutated by exactly one
// privileged writer process.
//
// The store is backed by one or more memory-mapped property areas, each
// holding a compact trie index over property names and an append-only
// slab of property records. Readers observe torn-free values across a
// concurrent writer using a seqlock protocol built on a per-record
// serial counter, and can block until a property (or the store as a
// whole) changes using futex wait/wake.
//
// Names are routed to the property area that owns them by a Contexts
// implementation performing longest-prefix matching, mirroring the
// three variants of Android's bionic system_properties: table-driven
// (Serialized), one-file-per-prefix (Split), and single-file (PreSplit).
package propstore
