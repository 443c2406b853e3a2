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

type ICompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Company, error)
	List(ctx context.Context) ([]*model.Company, error)
	Save(ctx context.Context, c *model.Company) error
	// AddRef / RemoveRef maintain one of the employees, teams or projects lists.
	AddRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error
	RemoveRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error
}

const (
	CompanyEmployees = "employees"
	CompanyTeams     = "teams"
	CompanyProjects  = "projects"
)

type CompanyRepo struct {
	coll *mongo.Collection
}

func NewCompanyRepo(db *mongo.Database) ICompanyRepository {
	return &CompanyRepo{coll: db.Collection(model.CollectionCompany)}
}

func (r *CompanyRepo) collection() *mongo.Collection { return r.coll }

func (r *CompanyRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
	}
}

func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	for _, list := range []*[]primitive.ObjectID{&c.Employees, &c.Teams, &c.Projects} {
		if *list == nil {
			*list = []primitive.ObjectID{}
		}
	}
	c.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, c)
	return mapErr(err, "company")
}

func (r *CompanyRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.Company, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var c model.Company
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&c); err != nil {
		return nil, mapErr(err, "company")
	}
	return &c, nil
}

func (r *CompanyRepo) List(ctx context.Context) ([]*model.Company, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(err, "company")
	}
	defer cursor.Close(ctx)

	companies := make([]*model.Company, 0)
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, mapErr(err, "company")
	}
	return companies, nil
}

func (r *CompanyRepo) Save(ctx context.Context, c *model.Company) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	c.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"name":      c.Name,
		"admin":     c.Admin,
		"active":    c.Active,
		"updatedAt": c.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "company")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "company")
	}
	return nil
}

func (r *CompanyRepo) AddRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{field: ref}})
}

func (r *CompanyRepo) RemoveRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$pull": bson.M{field: ref}})
}

func (r *CompanyRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	if id.IsZero() {
		return nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.coll.UpdateByID(ctx, id, update)
	return mapErr(err, "company")
}
