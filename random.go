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

import "math/rand"

// Source is the single shared random source the engine draws on for (a)
// memberlist shuffles, (b) insertion position of new peers, and (c)
// selection of ping-req recipients (spec.md §5). It must be seedable so
// tests can reproduce a run.
type Source interface {
	// Intn returns a pseudo-random number in [0, n). Panics if n <= 0,
	// matching math/rand.Intn.
	Intn(n int) int
	// Shuffle randomizes the order of a slice of the given length using
	// the supplied swap function, matching math/rand.Shuffle's signature.
	Shuffle(n int, swap func(i, j int))
}

// mathRandSource adapts *rand.Rand to Source.
type mathRandSource struct {
	r *rand.Rand
}

// NewSource returns a Source seeded with the given value. Two Sources
// constructed with the same seed produce identical sequences, so a run can
// be reproduced from its seed.
func NewSource(seed int64) Source {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

func (s *mathRandSource) Intn(n int) int {
	return s.r.Intn(n)
}

func (s *mathRandSource) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
