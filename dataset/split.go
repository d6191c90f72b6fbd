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

import "github.com/gorse-io/feedsplit/base"

// MinHeldoutFeedback is the least number of feedback a user needs before any
// of it is held out.
const MinHeldoutFeedback = 5

// Shuffle returns ids reordered by a random permutation drawn from rng.
func Shuffle(rng base.RandomGenerator, ids []string) []string {
	perm := rng.Perm(len(ids))
	shuffled := make([]string, len(ids))
	for i, j := range perm {
		shuffled[i] = ids[j]
	}
	return shuffled
}

// Cohorts partitions users into train, validation and test users. Test is
// nil for a two-way split.
type Cohorts struct {
	Train      []string
	Validation []string
	Test       []string
}

// SplitUsers splits shuffled users by position: the last heldoutUsers users
// form the test cohort, the heldoutUsers before them the validation cohort and
// the rest the train cohort.
func SplitUsers(users []string, heldoutUsers int) (*Cohorts, error) {
	n := len(users)
	if heldoutUsers < 0 {
		return nil, ConfigurationErrorf("heldout_users", "must not be negative, but got %d", heldoutUsers)
	}
	if 2*heldoutUsers >= n {
		return nil, ConfigurationErrorf("heldout_users",
			"2 x %d held-out users leaves no train users among %d users", heldoutUsers, n)
	}
	return &Cohorts{
		Train:      users[:n-2*heldoutUsers],
		Validation: users[n-2*heldoutUsers : n-heldoutUsers],
		Test:       users[n-heldoutUsers:],
	}, nil
}

// SplitUsersTwoWay splits shuffled users into train and validation cohorts
// only. The last heldoutUsers users form the validation cohort.
func SplitUsersTwoWay(users []string, heldoutUsers int) (*Cohorts, error) {
	n := len(users)
	if heldoutUsers < 0 {
		return nil, ConfigurationErrorf("heldout_users", "must not be negative, but got %d", heldoutUsers)
	}
	if heldoutUsers >= n {
		return nil, ConfigurationErrorf("heldout_users",
			"%d held-out users leaves no train users among %d users", heldoutUsers, n)
	}
	return &Cohorts{
		Train:      users[:n-heldoutUsers],
		Validation: users[n-heldoutUsers:],
	}, nil
}

// SplitTrainTestProportion splits the feedback of every user into an input part
// and a held-out part. Users with at least MinHeldoutFeedback feedback hold out
// floor(testProp*n) of them, chosen at random positions. Other users keep
// everything as input. rng is consumed in user order, so the same table and
// seed always hold out the same rows.
func SplitTrainTestProportion(table []Feedback, testProp float64, rng base.RandomGenerator) (input, heldout []Feedback, err error) {
	if testProp < 0 || testProp >= 1 {
		return nil, nil, ConfigurationErrorf("test_prop", "must be in [0, 1), but got %v", testProp)
	}
	input = make([]Feedback, 0, len(table))
	heldout = make([]Feedback, 0, int(testProp*float64(len(table)))+1)
	users, groups := GroupByUser(table)
	for _, userId := range users {
		group := groups[userId]
		n := len(group)
		if n < MinHeldoutFeedback {
			input = append(input, group...)
			continue
		}
		mask := make([]bool, n)
		for _, pos := range rng.Choice(n, int(testProp*float64(n))) {
			mask[pos] = true
		}
		for i, f := range group {
			if mask[i] {
				heldout = append(heldout, f)
			} else {
				input = append(input, f)
			}
		}
	}
	return input, heldout, nil
}
