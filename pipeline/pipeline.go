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

package pipeline

import (
	"context"
	"time"

	"github.com/gorse-io/feedsplit/base"
	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Result holds every table and mapping produced by Run.
type Result struct {
	Train             []dataset.IndexedFeedback
	ValidationInput   []dataset.IndexedFeedback
	ValidationHeldout []dataset.IndexedFeedback
	TestInput         []dataset.IndexedFeedback
	TestHeldout       []dataset.IndexedFeedback
	Inference         []dataset.IndexedFeedback

	Profile2Id *base.Index
	Show2Id    *base.Index

	Summary Summary
}

// Summary describes the sizes of a run.
type Summary struct {
	Seed            int64
	NumFeedback     int
	NumFiltered     int
	NumUsers        int
	NumItems        int
	TrainUsers      int
	ValidationUsers int
	TestUsers       int
	Sparsity        float64
	Elapsed         time.Duration
}

// Run filters, splits and remaps a raw feedback table. Randomness is drawn
// from generators created by source: one per id kind for shuffling, one per
// held-out cohort for the proportional split.
func Run(ctx context.Context, cfg config.DatasetConfig, table []dataset.Feedback, source base.RandomSource) (*Result, error) {
	start := time.Now()
	summary := Summary{Seed: cfg.Seed, NumFeedback: len(table)}

	// filter sparse users and items
	filtered, err := dataset.FilterTriplets(table, cfg.MinUserCount, cfg.MinItemCount)
	if err != nil {
		return nil, errors.Trace(err)
	}
	summary.NumFiltered = len(filtered.Table)
	summary.NumUsers = len(filtered.UniqueUsers)
	summary.NumItems = len(filtered.UniqueItems)
	if summary.NumUsers > 0 && summary.NumItems > 0 {
		summary.Sparsity = float64(summary.NumFiltered) / float64(summary.NumUsers) / float64(summary.NumItems)
	}
	log.Logger().Info("filter feedback",
		zap.Int("min_user_count", cfg.MinUserCount),
		zap.Int("min_item_count", cfg.MinItemCount),
		zap.Int("n_feedback", summary.NumFiltered),
		zap.Int("n_users", summary.NumUsers),
		zap.Int("n_items", summary.NumItems),
		zap.Float64("sparsity", summary.Sparsity))
	if err = ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	// shuffle ids and split users
	users := dataset.Shuffle(source.NewGenerator(), filtered.UniqueUsers)
	items := dataset.Shuffle(source.NewGenerator(), filtered.UniqueItems)
	var cohorts *dataset.Cohorts
	if cfg.WithTest {
		cohorts, err = dataset.SplitUsers(users, cfg.HeldoutUsers)
	} else {
		cohorts, err = dataset.SplitUsersTwoWay(users, cfg.HeldoutUsers)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	summary.TrainUsers = len(cohorts.Train)
	summary.ValidationUsers = len(cohorts.Validation)
	summary.TestUsers = len(cohorts.Test)
	log.Logger().Info("split users",
		zap.Int("heldout_users", cfg.HeldoutUsers),
		zap.Bool("with_test", cfg.WithTest),
		zap.Int("n_train_users", summary.TrainUsers),
		zap.Int("n_validation_users", summary.ValidationUsers),
		zap.Int("n_test_users", summary.TestUsers))

	result := &Result{
		Profile2Id: base.NewIndex(users),
		Show2Id:    base.NewIndex(items),
	}
	trainTable := dataset.FilterUsers(filtered.Table, cohorts.Train)
	trainItems := dataset.UniqueItems(trainTable)
	if result.Train, err = dataset.Numerize(trainTable, result.Profile2Id, result.Show2Id); err != nil {
		return nil, errors.Trace(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	// split feedback of held-out users
	splitCohort := func(name string, cohort []string) (input, heldout []dataset.IndexedFeedback, err error) {
		cohortTable := dataset.FilterItems(dataset.FilterUsers(filtered.Table, cohort), trainItems)
		tr, te, err := dataset.SplitTrainTestProportion(cohortTable, cfg.TestProp, source.NewGenerator())
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if input, err = dataset.Numerize(tr, result.Profile2Id, result.Show2Id); err != nil {
			return nil, nil, errors.Trace(err)
		}
		if heldout, err = dataset.Numerize(te, result.Profile2Id, result.Show2Id); err != nil {
			return nil, nil, errors.Trace(err)
		}
		log.Logger().Info("split held-out feedback",
			zap.String("cohort", name),
			zap.Float64("test_prop", cfg.TestProp),
			zap.Int("n_dropped", len(dataset.FilterUsers(filtered.Table, cohort))-len(cohortTable)),
			zap.Int("n_input", len(input)),
			zap.Int("n_heldout", len(heldout)))
		return input, heldout, nil
	}
	if result.ValidationInput, result.ValidationHeldout, err = splitCohort("validation", cohorts.Validation); err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.WithTest {
		if result.TestInput, result.TestHeldout, err = splitCohort("test", cohorts.Test); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// remap the whole table for inference
	if result.Inference, err = dataset.Numerize(filtered.Table, result.Profile2Id, result.Show2Id); err != nil {
		return nil, errors.Trace(err)
	}
	summary.Elapsed = time.Since(start)
	result.Summary = summary
	log.Logger().Info("complete preprocessing",
		zap.Int("n_train", len(result.Train)),
		zap.Int("n_inference", len(result.Inference)),
		zap.Duration("elapsed", summary.Elapsed))
	return result, nil
}
