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
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// Feedback is a positive user-item interaction. Duplicates are kept.
type Feedback struct {
	UserId string
	ItemId string
}

// IndexedFeedback is a Feedback whose ids are replaced by dense indices.
type IndexedFeedback struct {
	UserIndex int32 `json:"uid"`
	ItemIndex int32 `json:"iid"`
}

// Count is an entry of a count table.
type Count struct {
	Id   string
	Size int
}

// CompareID orders ids numerically when both are integers and
// lexicographically otherwise. Integers sort before other ids. Distinct
// spellings of the same integer ("7", "07", "+7") are ordered by text, so
// CompareID returns 0 only for equal strings.
func CompareID(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if x < y {
			return -1
		} else if x > y {
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// FilterUsers keeps feedback of the given users.
func FilterUsers(table []Feedback, users []string) []Feedback {
	userSet := mapset.NewThreadUnsafeSet(users...)
	return lo.Filter(table, func(f Feedback, _ int) bool {
		return userSet.Contains(f.UserId)
	})
}

// FilterItems keeps feedback on the given items.
func FilterItems(table []Feedback, items []string) []Feedback {
	itemSet := mapset.NewThreadUnsafeSet(items...)
	return lo.Filter(table, func(f Feedback, _ int) bool {
		return itemSet.Contains(f.ItemId)
	})
}

// UniqueItems returns items in order of first appearance.
func UniqueItems(table []Feedback) []string {
	return lo.Uniq(lo.Map(table, func(f Feedback, _ int) string {
		return f.ItemId
	}))
}

// GroupByUser groups feedback by user. Users are ordered by CompareID and
// feedback keeps its relative order within each group.
func GroupByUser(table []Feedback) ([]string, map[string][]Feedback) {
	groups := lo.GroupBy(table, func(f Feedback) string {
		return f.UserId
	})
	users := lo.Keys(groups)
	sortIDs(users)
	return users, groups
}
