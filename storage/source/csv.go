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

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gorse-io/feedsplit/base"
	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// CSV reads feedback from a delimited text file. With a header, columns are
// found by name. Without one, column names must be zero-based positions; the
// first two columns are used otherwise.
type CSV struct {
	path       string
	separator  string
	header     bool
	userColumn string
	itemColumn string
	progress   bool
}

func NewCSV(cfg config.SourceConfig) *CSV {
	return &CSV{
		path:       cfg.Path,
		separator:  cfg.Separator,
		header:     cfg.Header,
		userColumn: cfg.UserColumn,
		itemColumn: cfg.ItemColumn,
		progress:   cfg.Progress,
	}
}

func (c *CSV) Load(ctx context.Context) ([]dataset.Feedback, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var reader io.Reader = file
	if c.progress {
		stat, err := file.Stat()
		if err != nil {
			return nil, errors.Trace(err)
		}
		pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Loading feedback"))
		reader = &pbReader
	}

	userIndex, itemIndex := positionOf(c.userColumn, 0), positionOf(c.itemColumn, 1)
	var (
		table   []dataset.Feedback
		lineErr error
	)
	lineReader, err := base.NewLineReader(reader, c.separator)
	if err != nil {
		return nil, dataset.ConfigurationErrorf("source.separator", "%v", err)
	}
	err = lineReader.ReadLines(func(line int, fields []string) bool {
		if line == 0 && c.header {
			userIndex, lineErr = c.columnOf(fields, c.userColumn)
			if lineErr != nil {
				return false
			}
			itemIndex, lineErr = c.columnOf(fields, c.itemColumn)
			return lineErr == nil
		}
		if lineErr = ctx.Err(); lineErr != nil {
			return false
		}
		if len(fields) == 1 && fields[0] == "" {
			// skip blank lines
			return true
		}
		if userIndex >= len(fields) {
			lineErr = errors.Trace(&dataset.SchemaError{Source: c.lineName(line), Column: c.userColumn})
			return false
		}
		if itemIndex >= len(fields) {
			lineErr = errors.Trace(&dataset.SchemaError{Source: c.lineName(line), Column: c.itemColumn})
			return false
		}
		feedback := dataset.Feedback{UserId: fields[userIndex], ItemId: fields[itemIndex]}
		if err := base.ValidateId(feedback.UserId); err != nil {
			lineErr = errors.Annotatef(err, "invalid user id at %s", c.lineName(line))
			return false
		}
		if err := base.ValidateId(feedback.ItemId); err != nil {
			lineErr = errors.Annotatef(err, "invalid item id at %s", c.lineName(line))
			return false
		}
		table = append(table, feedback)
		return true
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if lineErr != nil {
		return nil, lineErr
	}
	log.Logger().Info("load feedback from file",
		zap.String("path", c.path),
		zap.Int("n_feedback", len(table)))
	return table, nil
}

func (c *CSV) Close() error {
	return nil
}

func (c *CSV) columnOf(header []string, column string) (int, error) {
	_, index, ok := lo.FindIndexOf(header, func(name string) bool {
		return name == column
	})
	if !ok {
		return 0, errors.Trace(&dataset.SchemaError{Source: c.path, Column: column})
	}
	return index, nil
}

func (c *CSV) lineName(line int) string {
	return fmt.Sprintf("%s:%d", c.path, line+1)
}

func positionOf(column string, fallback int) int {
	if position, err := strconv.Atoi(column); err == nil && position >= 0 {
		return position
	}
	return fallback
}
