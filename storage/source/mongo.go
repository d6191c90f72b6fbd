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

	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/gorse-io/feedsplit/storage"
	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// mongoFeedback is the document layout of the feedback collection.
type mongoFeedback struct {
	FeedbackKey struct {
		FeedbackType string `bson:"feedbacktype"`
		UserId       string `bson:"userid"`
		ItemId       string `bson:"itemid"`
	} `bson:"feedbackkey"`
}

// MongoDB reads the feedback collection of a MongoDB database.
type MongoDB struct {
	storage.TablePrefix
	client        *mongo.Client
	dbName        string
	feedbackTypes []string
}

func OpenMongo(ctx context.Context, path, tablePrefix string, feedbackTypes []string) (*MongoDB, error) {
	cs, err := connstring.ParseAndValidate(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	opts := options.Client()
	opts.Monitor = otelmongo.NewMonitor()
	opts.ApplyURI(path)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &MongoDB{
		TablePrefix:   storage.TablePrefix(tablePrefix),
		client:        client,
		dbName:        cs.Database,
		feedbackTypes: feedbackTypes,
	}, nil
}

func (m *MongoDB) Load(ctx context.Context) ([]dataset.Feedback, error) {
	c := m.client.Database(m.dbName).Collection(m.FeedbackTable())
	filter := bson.M{}
	if len(m.feedbackTypes) > 0 {
		filter["feedbackkey.feedbacktype"] = bson.M{"$in": m.feedbackTypes}
	}
	opt := options.Find().SetProjection(bson.M{"feedbackkey": 1})
	r, err := c.Find(ctx, filter, opt)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close(ctx)
	var table []dataset.Feedback
	for r.Next(ctx) {
		var doc mongoFeedback
		if err = r.Decode(&doc); err != nil {
			return nil, errors.Trace(err)
		}
		if doc.FeedbackKey.UserId == "" {
			return nil, errors.Trace(&dataset.SchemaError{Source: m.FeedbackTable(), Column: "feedbackkey.userid"})
		}
		if doc.FeedbackKey.ItemId == "" {
			return nil, errors.Trace(&dataset.SchemaError{Source: m.FeedbackTable(), Column: "feedbackkey.itemid"})
		}
		table = append(table, dataset.Feedback{UserId: doc.FeedbackKey.UserId, ItemId: doc.FeedbackKey.ItemId})
	}
	if err = r.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load feedback from database",
		zap.String("collection", m.FeedbackTable()),
		zap.Strings("feedback_types", m.feedbackTypes),
		zap.Int("n_feedback", len(table)))
	return table, nil
}

func (m *MongoDB) Close() error {
	return m.client.Disconnect(context.Background())
}
