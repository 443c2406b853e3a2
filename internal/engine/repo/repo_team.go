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

type ITeamRepository interface {
	Create(ctx context.Context, t *model.Team) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Team, error)
	// FindByName matches an active team of company case-insensitively.
	FindByName(ctx context.Context, company primitive.ObjectID, name string) (*model.Team, error)
	// ListByCompany lists active teams; a zero company lists all of them.
	ListByCompany(ctx context.Context, company primitive.ObjectID) ([]*model.Team, error)
	Save(ctx context.Context, t *model.Team) error
	AddMember(ctx context.Context, id, userId primitive.ObjectID) error
	RemoveMember(ctx context.Context, id, userId primitive.ObjectID) error
	AddProject(ctx context.Context, id, projectId primitive.ObjectID) error
}

type TeamRepo struct {
	coll *mongo.Collection
}

func NewTeamRepo(db *mongo.Database) ITeamRepository {
	return &TeamRepo{coll: db.Collection(model.CollectionTeam)}
}

func (r *TeamRepo) collection() *mongo.Collection { return r.coll }

func (r *TeamRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "company", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	}
}

func (r *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if t.Members == nil {
		t.Members = []primitive.ObjectID{}
	}
	if t.Projects == nil {
		t.Projects = []primitive.ObjectID{}
	}
	t.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, t)
	return mapErr(err, "team")
}

func (r *TeamRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.Team, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var t model.Team
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&t); err != nil {
		return nil, mapErr(err, "team")
	}
	return &t, nil
}

func (r *TeamRepo) FindByName(ctx context.Context, company primitive.ObjectID, name string) (*model.Team, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var t model.Team
	err := r.coll.FindOne(ctx,
		bson.M{"company": company, "name": name, "active": true},
		options.FindOne().SetCollation(caseInsensitive),
	).Decode(&t)
	if err != nil {
		return nil, mapErr(err, "team")
	}
	return &t, nil
}

func (r *TeamRepo) ListByCompany(ctx context.Context, company primitive.ObjectID) ([]*model.Team, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"active": true}
	if !company.IsZero() {
		filter["company"] = company
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(err, "team")
	}
	defer cursor.Close(ctx)

	teams := make([]*model.Team, 0)
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, mapErr(err, "team")
	}
	return teams, nil
}

func (r *TeamRepo) Save(ctx context.Context, t *model.Team) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	t.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, t.ID, bson.M{"$set": bson.M{
		"name":      t.Name,
		"leader":    t.Leader,
		"active":    t.Active,
		"updatedAt": t.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "team")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "team")
	}
	return nil
}

func (r *TeamRepo) AddMember(ctx context.Context, id, userId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"members": userId}})
}

func (r *TeamRepo) RemoveMember(ctx context.Context, id, userId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$pull": bson.M{"members": userId}})
}

func (r *TeamRepo) AddProject(ctx context.Context, id, projectId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"projects": projectId}})
}

func (r *TeamRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update["$set"] = bson.M{"updatedAt": time.Now()}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "active": true}, update)
	if err != nil {
		return mapErr(err, "team")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "team")
	}
	return nil
}
