// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IChatRepository interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.ChatMessage, error)
	// History returns active messages of a project in ascending creation order.
	// With a zero task only project-level messages are returned.
	History(ctx context.Context, project, task primitive.ObjectID) ([]*model.ChatMessage, error)
	Save(ctx context.Context, m *model.ChatMessage) error
}

type ChatRepo struct {
	coll *mongo.Collection
}

func NewChatRepo(db *mongo.Database) IChatRepository {
	return &ChatRepo{coll: db.Collection(model.CollectionChatMessage)}
}

func (r *ChatRepo) collection() *mongo.Collection { return r.coll }

func (r *ChatRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "task", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
}

func (r *ChatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	m.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, m)
	return mapErr(err, "message")
}

func (r *ChatRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.ChatMessage, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var m model.ChatMessage
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&m); err != nil {
		return nil, mapErr(err, "message")
	}
	return &m, nil
}

func (r *ChatRepo) History(ctx context.Context, project, task primitive.ObjectID) ([]*model.ChatMessage, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"project": project, "active": true}
	if task.IsZero() {
		filter["task"] = bson.M{"$exists": false}
	} else {
		filter["task"] = task
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, "message")
	}
	defer cursor.Close(ctx)

	messages := make([]*model.ChatMessage, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, mapErr(err, "message")
	}
	return messages, nil
}

func (r *ChatRepo) Save(ctx context.Context, m *model.ChatMessage) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	m.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, m.ID, bson.M{"$set": bson.M{
		"content":   m.Content,
		"code":      m.Code,
		"edited":    m.Edited,
		"editedAt":  m.EditedAt,
		"active":    m.Active,
		"updatedAt": m.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "message")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "message")
	}
	return nil
}
