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
	"github.com/gorse-io/feedsplit/base"
	"github.com/juju/errors"
)

// Numerize replaces raw ids with dense indices. Every user and item in the
// table must be indexed.
func Numerize(table []Feedback, profile2id, show2id *base.Index) ([]IndexedFeedback, error) {
	numerized := make([]IndexedFeedback, len(table))
	for i, f := range table {
		userIndex := profile2id.ToNumber(f.UserId)
		if userIndex == base.NotId {
			return nil, errors.Trace(&ReferentialError{Kind: "user", Id: f.UserId})
		}
		itemIndex := show2id.ToNumber(f.ItemId)
		if itemIndex == base.NotId {
			return nil, errors.Trace(&ReferentialError{Kind: "item", Id: f.ItemId})
		}
		numerized[i] = IndexedFeedback{UserIndex: userIndex, ItemIndex: itemIndex}
	}
	return numerized, nil
}
