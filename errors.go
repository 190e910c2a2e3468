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

package swim

import "errors"

// Routing bugs (spec.md §7.1): the recipient of an inbound message was not
// us, or we were asked to ping-req ourselves. These indicate a broken
// collaborator (transport misdelivery, or a peer with a corrupted view of
// our id) and are surfaced loudly rather than dropped silently.
var (
	ErrWrongRecipient = errors.New("swim: message addressed to a different recipient")
	ErrSelfPingReq    = errors.New("swim: asked to ping-req myself")
	ErrInvalidConfig  = errors.New("swim: invalid configuration")
)
