// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import "math/rand"

// DefaultSeed is the seed used when none is configured.
const DefaultSeed int64 = 42

// RandomGenerator is the random generator for feedsplit.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator.
func NewRandomGenerator(seed int64) RandomGenerator {
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// RandomSource creates freshly seeded generators. Every stage that needs
// reproducible randomness asks the source for its own generator.
type RandomSource interface {
	NewGenerator() RandomGenerator
}

// SeedSource creates generators from a fixed seed.
type SeedSource int64

func (s SeedSource) NewGenerator() RandomGenerator {
	return NewRandomGenerator(int64(s))
}

// Choice picks n distinct positions from [0, size) without replacement. The
// result is ordered the way the positions were drawn.
func (rng RandomGenerator) Choice(size, n int) []int {
	if n <= 0 {
		return []int{}
	}
	if n > size {
		n = size
	}
	return rng.Perm(size)[:n]
}
