/*
 * Copyright 2018 De-labtory
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package idgen generates stable, k-sortable node identifiers for nodes
// that don't supply their own (spec.md §1 requires only that an id be
// stable and unique cluster-wide; it does not mandate a format).
package idgen

import "github.com/rs/xid"

// New returns a new globally unique, lexically sortable id suitable for
// use as a swim node id.
func New() string {
	return xid.New().String()
}
