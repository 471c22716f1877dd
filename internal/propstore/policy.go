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

// This file exists solely to isolate a behavior of bionic's
// ReadCallback: for callers whose UID falls in specific ranges,
// a handful of USB- and adbd-related property names are reported with
// hard-coded constants regardless of what is actually stored. That
// substitution is not a generic access-control mechanism, it names five
// specific properties and two specific UID ranges, and it belongs above
// Store rather than inside the seqlock read path. Store.ReadCallback
// never calls anything in this file; a caller who genuinely needs this
// legacy behavior must construct and use it explicitly.

// uidSubstitutions maps a property name to the constant a legacy caller
// in the affected UID ranges should see instead of its real value.
var uidSubstitutions = map[string]string{
	"init.svc.adbd":          "stopped",
	"sys.usb.configfs":       "0",
	"persist.sys.usb.config": "none",
	"sys.usb.config":         "none",
	"sys.usb.state":          "none",
}

// uidInSubstitutionRange reports whether uid falls into one of the two
// ranges bionic hard-codes.
func uidInSubstitutionRange(uid int) bool {
	return (uid >= 10000 && uid <= 19999) || (uid >= 90000 && uid <= 99999)
}

// UIDSubstitutionCallback wraps a ReadCallback so that, for the caller
// identified by uid, the fixed set of names in uidSubstitutions are
// reported with their substituted constant instead of the value stored
// in the property area. It changes nothing about routing or the
// seqlock read itself; it only rewrites what the wrapped callback
// receives.
//
// This reproduces a policy flagged as suspect and not meant to be
// replicated absent a real requirement for it. It is provided here,
// opt-in and disconnected from Store, only so the behavior can be
// reproduced exactly if a caller has that requirement; Store never
// constructs or invokes it itself.
func UIDSubstitutionCallback(uid int, next func(name, value string, serial uint32)) func(name, value string, serial uint32) {
	if !uidInSubstitutionRange(uid) {
		return next
	}
	return func(name, value string, serial uint32) {
		if sub, ok := uidSubstitutions[name]; ok {
			next(name, sub, serial)
			return
		}
		next(name, value, serial)
	}
}
