// Copyright 2026 gorse Project Authors
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

import (
	"slices"

	"github.com/samber/lo"
)

// FilterResult is the output of FilterTriplets.
type FilterResult struct {
	Table       []Feedback
	UserCount   []Count
	ItemCount   []Count
	UniqueUsers []string
	UniqueItems []string
}

// CountUsers returns the number of feedback per user ordered by user id.
func CountUsers(table []Feedback) []Count {
	dict := NewFreqDict()
	for _, f := range table {
		dict.Id(f.UserId)
	}
	return dict.Counts()
}

// CountItems returns the number of feedback per item ordered by item id.
func CountItems(table []Feedback) []Count {
	dict := NewFreqDict()
	for _, f := range table {
		dict.Id(f.ItemId)
	}
	return dict.Counts()
}

// FilterTriplets drops feedback on items seen less than minItemCount times, then
// drops feedback of users left with less than minUserCount feedback. A zero
// threshold disables the corresponding filter.
func FilterTriplets(table []Feedback, minUserCount, minItemCount int) (*FilterResult, error) {
	if minUserCount < 0 {
		return nil, ConfigurationErrorf("min_user_count", "must not be negative, but got %d", minUserCount)
	}
	if minItemCount < 0 {
		return nil, ConfigurationErrorf("min_item_count", "must not be negative, but got %d", minItemCount)
	}
	if minItemCount > 0 {
		items := idsAtLeast(CountItems(table), minItemCount)
		table = FilterItems(table, items)
	}
	if minUserCount > 0 {
		users := idsAtLeast(CountUsers(table), minUserCount)
		table = FilterUsers(table, users)
	}
	userCount, itemCount := CountUsers(table), CountItems(table)
	return &FilterResult{
		Table:       table,
		UserCount:   userCount,
		ItemCount:   itemCount,
		UniqueUsers: countIds(userCount),
		UniqueItems: countIds(itemCount),
	}, nil
}

func idsAtLeast(counts []Count, threshold int) []string {
	return countIds(lo.Filter(counts, func(c Count, _ int) bool {
		return c.Size >= threshold
	}))
}

func countIds(counts []Count) []string {
	return lo.Map(counts, func(c Count, _ int) string {
		return c.Id
	})
}

func sortIDs(ids []string) {
	slices.SortFunc(ids, CompareID)
}
