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
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SQLTestSuite struct {
	suite.Suite
	path string
	// exec runs DDL and DML against the database under test
	exec func(query string, args ...any) error
}

func (suite *SQLTestSuite) SetupTest() {
	suite.NoError(suite.exec("DROP TABLE IF EXISTS test_feedback"))
	suite.NoError(suite.exec("CREATE TABLE test_feedback (feedback_type VARCHAR(256), user_id VARCHAR(256), item_id VARCHAR(256))"))
	for _, row := range [][]string{
		{"click", "1", "10"},
		{"click", "1", "20"},
		{"like", "2", "10"},
		{"read", "3", "30"},
	} {
		suite.NoError(suite.exec("INSERT INTO test_feedback (feedback_type, user_id, item_id) VALUES ('" +
			row[0] + "','" + row[1] + "','" + row[2] + "')"))
	}
}

func (suite *SQLTestSuite) open(feedbackTypes ...string) Source {
	cfg := config.GetDefaultConfig().Source
	cfg.Path = suite.path
	cfg.TablePrefix = "test_"
	cfg.FeedbackTypes = feedbackTypes
	source, err := Open(context.Background(), cfg)
	suite.NoError(err)
	suite.IsType(&SQL{}, source)
	return source
}

func (suite *SQLTestSuite) TestLoad() {
	source := suite.open()
	defer source.Close()
	table, err := source.Load(context.Background())
	suite.NoError(err)
	suite.ElementsMatch([]dataset.Feedback{
		{UserId: "1", ItemId: "10"},
		{UserId: "1", ItemId: "20"},
		{UserId: "2", ItemId: "10"},
		{UserId: "3", ItemId: "30"},
	}, table)
}

func (suite *SQLTestSuite) TestLoadFeedbackTypes() {
	source := suite.open("click", "like")
	defer source.Close()
	table, err := source.Load(context.Background())
	suite.NoError(err)
	suite.ElementsMatch([]dataset.Feedback{
		{UserId: "1", ItemId: "10"},
		{UserId: "1", ItemId: "20"},
		{UserId: "2", ItemId: "10"},
	}, table)
}

func (suite *SQLTestSuite) TestSchemaError() {
	suite.NoError(suite.exec("DROP TABLE test_feedback"))
	suite.NoError(suite.exec("CREATE TABLE test_feedback (uid VARCHAR(256), item_id VARCHAR(256))"))
	source := suite.open()
	defer source.Close()
	_, err := source.Load(context.Background())
	suite.True(errors.Is(err, dataset.ErrSchema))
	suite.ErrorContains(err, "user_id")

	// feedback_type is required only when filtering
	suite.NoError(suite.exec("DROP TABLE test_feedback"))
	suite.NoError(suite.exec("CREATE TABLE test_feedback (user_id VARCHAR(256), item_id VARCHAR(256))"))
	source = suite.open("click")
	defer source.Close()
	_, err = source.Load(context.Background())
	suite.True(errors.Is(err, dataset.ErrSchema))
	suite.ErrorContains(err, "feedback_type")
}

func newExec(driver, dsn string) func(query string, args ...any) error {
	return func(query string, args ...any) error {
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.Exec(query, args...)
		return err
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlite.db")
	suite.Run(t, &SQLTestSuite{
		path: "sqlite://" + path,
		exec: newExec("sqlite", path),
	})
}

func TestMySQL(t *testing.T) {
	uri := os.Getenv("MYSQL_URI")
	if uri == "" {
		t.Skip("MYSQL_URI is not set, skipping MySQL tests")
	}
	suite.Run(t, &SQLTestSuite{
		path: uri,
		exec: newExec("mysql", uri[len("mysql://"):]),
	})
}

func TestPostgres(t *testing.T) {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		t.Skip("POSTGRES_URI is not set, skipping PostgreSQL tests")
	}
	suite.Run(t, &SQLTestSuite{
		path: uri,
		exec: newExec("postgres", uri),
	})
}

func TestOpenUnsupported(t *testing.T) {
	_, err := OpenSQL("oracle://localhost", "", nil)
	assert.True(t, errors.Is(err, errors.NotSupported))
}
