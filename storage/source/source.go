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

// Package source loads raw feedback tables from delimited files, SQL
// databases and MongoDB.
package source

import (
	"context"

	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/gorse-io/feedsplit/storage"
)

// Source yields the raw feedback table.
type Source interface {
	Load(ctx context.Context) ([]dataset.Feedback, error)
	Close() error
}

// Open a source by the prefix of its path. Paths without a data store prefix
// are read as delimited text files.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch {
	case storage.IsSQL(cfg.Path):
		return OpenSQL(cfg.Path, cfg.TablePrefix, cfg.FeedbackTypes)
	case storage.IsMongo(cfg.Path):
		return OpenMongo(ctx, cfg.Path, cfg.TablePrefix, cfg.FeedbackTypes)
	default:
		return NewCSV(cfg), nil
	}
}
