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
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IUserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
	// ListByCompany lists users of company; a zero company lists everyone.
	ListByCompany(ctx context.Context, company primitive.ObjectID) ([]*model.User, error)
	Save(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddTeam(ctx context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error
	RemoveTeam(ctx context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error
}

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) IUserRepository {
	return &UserRepo{coll: db.Collection(model.CollectionUser)}
}

func (r *UserRepo) collection() *mongo.Collection { return r.coll }

func (r *UserRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "role", Value: 1}}},
	}
}

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Teams == nil {
		u.Teams = []primitive.ObjectID{}
	}
	u.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, u)
	return mapErr(err, "user")
}

func (r *UserRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapErr(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *UserRepo) ListByCompany(ctx context.Context, company primitive.ObjectID) ([]*model.User, error) {
	filter := bson.M{}
	if !company.IsZero() {
		filter["company"] = company
	}
	return r.find(ctx, filter)
}

func (r *UserRepo) find(ctx context.Context, filter bson.M) ([]*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(err, "user")
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapErr(err, "user")
	}
	return users, nil
}

// Save writes the editable fields of u.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     strings.ToLower(strings.TrimSpace(u.Email)),
		"password":  u.Password,
		"role":      u.Role,
		"active":    u.Active,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "user")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err, "user")
	}
	if res.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *UserRepo) AddTeam(ctx context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error {
	return r.updateTeams(ctx, userIds, bson.M{"$addToSet": bson.M{"teams": teamId}})
}

func (r *UserRepo) RemoveTeam(ctx context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error {
	return r.updateTeams(ctx, userIds, bson.M{"$pull": bson.M{"teams": teamId}})
}

func (r *UserRepo) updateTeams(ctx context.Context, userIds []primitive.ObjectID, update bson.M) error {
	if len(userIds) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": userIds}}, update)
	return mapErr(err, "user")
}
