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
	"strings"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/gorse-io/feedsplit/storage"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const (
	userIdColumn       = "user_id"
	itemIdColumn       = "item_id"
	feedbackTypeColumn = "feedback_type"
)

// SQL reads the feedback table of a MySQL, PostgreSQL or SQLite database.
type SQL struct {
	storage.TablePrefix
	client        *sql.DB
	gormDB        *gorm.DB
	feedbackTypes []string
}

func openDB(driver, system, dsn string) (*sql.DB, error) {
	db, err := otelsql.Open(driver, dsn,
		otelsql.WithAttributes(attribute.String("db.system", system)),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
	)
	return db, errors.Trace(err)
}

// OpenSQL connects to a SQL database.
func OpenSQL(path, tablePrefix string, feedbackTypes []string) (*SQL, error) {
	var (
		database = &SQL{TablePrefix: storage.TablePrefix(tablePrefix), feedbackTypes: feedbackTypes}
		err      error
	)
	gormConfig := storage.NewGORMConfig(tablePrefix)
	switch {
	case strings.HasPrefix(path, storage.MySQLPrefix):
		name := path[len(storage.MySQLPrefix):]
		if name, err = storage.AppendMySQLParams(name, map[string]string{
			"sql_mode": "'ONLY_FULL_GROUP_BY,STRICT_TRANS_TABLES,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION'",
		}); err != nil {
			return nil, errors.Trace(err)
		}
		if database.client, err = openDB("mysql", "mysql", name); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: database.client}), gormConfig)
	case strings.HasPrefix(path, storage.PostgresPrefix), strings.HasPrefix(path, storage.PostgreSQLPrefix):
		if database.client, err = openDB("postgres", "postgresql", path); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: database.client}), gormConfig)
	case strings.HasPrefix(path, storage.SQLitePrefix):
		if path, err = storage.AppendURLParams(path, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		name := path[len(storage.SQLitePrefix):]
		if database.client, err = openDB("sqlite", "sqlite", name); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, gormConfig)
	default:
		return nil, errors.NotSupportedf("data store %s", log.RedactDBURL(path))
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

// columns lists the columns of the feedback table.
func (d *SQL) columns(ctx context.Context) ([]string, error) {
	rows, err := d.gormDB.WithContext(ctx).Table(d.FeedbackTable()).Limit(1).Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()
	return rows.Columns()
}

func (d *SQL) Load(ctx context.Context) ([]dataset.Feedback, error) {
	columns, err := d.columns(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	required := []string{userIdColumn, itemIdColumn}
	if len(d.feedbackTypes) > 0 {
		required = append(required, feedbackTypeColumn)
	}
	for _, column := range required {
		if !lo.Contains(columns, column) {
			return nil, errors.Trace(&dataset.SchemaError{Source: d.FeedbackTable(), Column: column})
		}
	}

	tx := d.gormDB.WithContext(ctx).Table(d.FeedbackTable()).Select("user_id, item_id")
	if len(d.feedbackTypes) > 0 {
		tx = tx.Where("feedback_type IN ?", d.feedbackTypes)
	}
	rows, err := tx.Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()
	var table []dataset.Feedback
	for rows.Next() {
		var feedback dataset.Feedback
		if err = rows.Scan(&feedback.UserId, &feedback.ItemId); err != nil {
			return nil, errors.Trace(err)
		}
		table = append(table, feedback)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load feedback from database",
		zap.String("table", d.FeedbackTable()),
		zap.Strings("feedback_types", d.feedbackTypes),
		zap.Int("n_feedback", len(table)))
	return table, nil
}

func (d *SQL) Close() error {
	return d.client.Close()
}
