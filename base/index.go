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

// Index manages the map between raw IDs and dense indices. A raw ID is a
// user ID or item ID taken from the source. The dense index is the position of
// the ID in the sequence the index was built from.
type Index struct {
	Numbers map[string]int32 // raw ID -> dense index
	Names   []string         // dense index -> raw ID
}

// NotId represents an ID doesn't exist.
const NotId = int32(-1)

// NewIndex enumerates names in order. Repeated names keep their first index.
func NewIndex(names []string) *Index {
	idx := &Index{
		Numbers: make(map[string]int32, len(names)),
		Names:   make([]string, 0, len(names)),
	}
	for _, name := range names {
		idx.Add(name)
	}
	return idx
}

// Len returns the number of indexed Names.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.Names))
}

// Add adds a new ID to the indexer.
func (idx *Index) Add(name string) {
	if _, exist := idx.Numbers[name]; !exist {
		idx.Numbers[name] = int32(len(idx.Names))
		idx.Names = append(idx.Names, name)
	}
}

// ToNumber converts a raw ID to a dense index.
func (idx *Index) ToNumber(name string) int32 {
	if denseId, exist := idx.Numbers[name]; exist {
		return denseId
	}
	return NotId
}

// GetNames returns all names in index order.
func (idx *Index) GetNames() []string {
	return idx.Names
}

// Forward returns a copy of the raw ID -> dense index map.
func (idx *Index) Forward() map[string]int32 {
	m := make(map[string]int32, len(idx.Numbers))
	for name, number := range idx.Numbers {
		m[name] = number
	}
	return m
}

// Inverse returns the dense index -> raw ID map.
func (idx *Index) Inverse() map[int32]string {
	m := make(map[int32]string, len(idx.Names))
	for number, name := range idx.Names {
		m[int32(number)] = name
	}
	return m
}
