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

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator_Choice(t *testing.T) {
	rng := NewRandomGenerator(0)
	for n := 0; n <= 10; n++ {
		chosen := rng.Choice(10, n)
		assert.Len(t, chosen, n)
		set := mapset.NewSet(chosen...)
		assert.Equal(t, n, set.Cardinality())
		for _, v := range chosen {
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, 10)
		}
	}
	assert.Len(t, rng.Choice(3, 5), 3)
	assert.Empty(t, rng.Choice(3, -1))
}

func TestSeedSource(t *testing.T) {
	source := SeedSource(DefaultSeed)
	a := source.NewGenerator().Perm(100)
	b := source.NewGenerator().Perm(100)
	assert.Equal(t, a, b)
	c := SeedSource(0).NewGenerator().Perm(100)
	assert.NotEqual(t, a, c)
}
