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

import "time"

// Clock is the monotonic time source the engine uses to stamp pending pings
// and to evaluate the expiry ladder (spec.md §5). Swapping in a fake clock
// is how the test suite drives the three-phase timeout ladder without
// sleeping.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

// NewSystemClock returns a Clock backed by the real wall clock.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
