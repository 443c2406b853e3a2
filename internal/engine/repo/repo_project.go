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

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	// Get loads an active project without any access scoping.
	Get(ctx context.Context, id primitive.ObjectID) (*model.Project, error)
	// FindVisible returns the project only when scope may see it; otherwise not found.
	FindVisible(ctx context.Context, scope access.Scope, id primitive.ObjectID) (*model.Project, error)
	List(ctx context.Context, scope access.Scope) ([]*model.Project, error)
	FindByName(ctx context.Context, company primitive.ObjectID, name string) (*model.Project, error)
	Save(ctx context.Context, p *model.Project) error
	AddMember(ctx context.Context, id, userId primitive.ObjectID) error
	RemoveMember(ctx context.Context, id, userId primitive.ObjectID) error
	AddTask(ctx context.Context, id, taskId primitive.ObjectID) error
	AddComment(ctx context.Context, id primitive.ObjectID, c model.Comment) error
}

type ProjectRepo struct {
	coll *mongo.Collection
}

func NewProjectRepo(db *mongo.Database) IProjectRepository {
	return &ProjectRepo{coll: db.Collection(model.CollectionProject)}
}

func (r *ProjectRepo) collection() *mongo.Collection { return r.coll }

func (r *ProjectRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "company", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "chatRoom", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "members", Value: 1}}},
		{Keys: bson.D{{Key: "team", Value: 1}}},
	}
}

func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if p.Members == nil {
		p.Members = []primitive.ObjectID{}
	}
	if p.Tasks == nil {
		p.Tasks = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	p.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err, "project")
}

func (r *ProjectRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var p model.Project
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&p); err != nil {
		return nil, mapErr(err, "project")
	}
	return &p, nil
}

func (r *ProjectRepo) FindVisible(ctx context.Context, scope access.Scope, id primitive.ObjectID) (*model.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := access.ProjectFilter(scope)
	filter["_id"] = id
	var p model.Project
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, mapErr(err, "project")
	}
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context, scope access.Scope) ([]*model.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, access.ProjectFilter(scope), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(err, "project")
	}
	defer cursor.Close(ctx)

	projects := make([]*model.Project, 0)
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, mapErr(err, "project")
	}
	return projects, nil
}

func (r *ProjectRepo) FindByName(ctx context.Context, company primitive.ObjectID, name string) (*model.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var p model.Project
	err := r.coll.FindOne(ctx,
		bson.M{"company": company, "name": name, "active": true},
		options.FindOne().SetCollation(caseInsensitive),
	).Decode(&p)
	if err != nil {
		return nil, mapErr(err, "project")
	}
	return &p, nil
}

// Save writes the editable fields of p; list fields have their own operations.
func (r *ProjectRepo) Save(ctx context.Context, p *model.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"status":      p.Status,
		"priority":    p.Priority,
		"startDate":   p.StartDate,
		"deadline":    p.Deadline,
		"active":      p.Active,
		"updatedAt":   p.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "project")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "project")
	}
	return nil
}

func (r *ProjectRepo) AddMember(ctx context.Context, id, userId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"members": userId}})
}

func (r *ProjectRepo) RemoveMember(ctx context.Context, id, userId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$pull": bson.M{"members": userId}})
}

func (r *ProjectRepo) AddTask(ctx context.Context, id, taskId primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"tasks": taskId}})
}

func (r *ProjectRepo) AddComment(ctx context.Context, id primitive.ObjectID, c model.Comment) error {
	return r.update(ctx, id, bson.M{"$push": bson.M{"comments": c}})
}

func (r *ProjectRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update["$set"] = bson.M{"updatedAt": time.Now()}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "active": true}, update)
	if err != nil {
		return mapErr(err, "project")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "project")
	}
	return nil
}
