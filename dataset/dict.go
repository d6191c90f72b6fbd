// Copyright 2025 gorse Project Authors
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

package dataset

import "slices"

// FreqDict assigns ids in order of first appearance and counts how many
// times each id was seen.
type FreqDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewFreqDict() (d *FreqDict) {
	d = &FreqDict{map[string]int{}, []string{}, []int{}}
	return
}

// Id returns the id assigned to s and counts one more occurrence.
func (d *FreqDict) Id(s string) (y int) {
	if y, ok := d.si[s]; ok {
		d.cnt[y]++
		return y
	}

	y = len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return
}

// Counts returns the count table ordered by ascending id.
func (d *FreqDict) Counts() []Count {
	counts := make([]Count, len(d.is))
	for i, s := range d.is {
		counts[i] = Count{Id: s, Size: d.cnt[i]}
	}
	slices.SortFunc(counts, func(a, b Count) int {
		return CompareID(a.Id, b.Id)
	})
	return counts
}
