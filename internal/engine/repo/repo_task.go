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
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskQuery narrows a task listing on top of the access predicate.
type TaskQuery struct {
	Project primitive.ObjectID
	Status  statemachine.TaskStatus
}

type ITaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	// Get loads an active task without any access scoping.
	Get(ctx context.Context, id primitive.ObjectID) (*model.Task, error)
	FindVisible(ctx context.Context, scope access.Scope, id primitive.ObjectID) (*model.Task, error)
	List(ctx context.Context, scope access.Scope, q TaskQuery) ([]*model.Task, error)
	Save(ctx context.Context, t *model.Task) error
	// SetStatus moves the task from -> to; false when the stored status is no longer from.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to statemachine.TaskStatus) (bool, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c model.Comment) error

	// PushDelegation appends req when assignee still holds the task and has no
	// pending request on it. It reports whether the request was appended.
	PushDelegation(ctx context.Context, id, assignee primitive.ObjectID, req model.DelegationRequest) (bool, error)
	// ResolveDelegation moves a pending request addressed to toUser into status.
	// Accepting also hands the task to toUser in the same update.
	ResolveDelegation(ctx context.Context, requestId, toUser primitive.ObjectID, status statemachine.DelegationStatus, at time.Time) (bool, error)
	FindByDelegation(ctx context.Context, requestId primitive.ObjectID) (*model.Task, error)
	// PendingFor lists tasks holding a pending request addressed to userId;
	// a zero company disables the company boundary.
	PendingFor(ctx context.Context, userId, company primitive.ObjectID) ([]*model.Task, error)
}

type TaskRepo struct {
	coll *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) ITaskRepository {
	return &TaskRepo{coll: db.Collection(model.CollectionTask)}
}

func (r *TaskRepo) collection() *mongo.Collection { return r.coll }

func (r *TaskRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "assignedTo", Value: 1}}},
		{Keys: bson.D{{Key: "delegationRequests._id", Value: 1}}},
		{Keys: bson.D{{Key: "delegationRequests.toUser", Value: 1}, {Key: "delegationRequests.status", Value: 1}}},
	}
}

func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if t.Comments == nil {
		t.Comments = []model.Comment{}
	}
	if t.DelegationRequests == nil {
		t.DelegationRequests = []model.DelegationRequest{}
	}
	t.Touch(time.Now())
	_, err := r.coll.InsertOne(ctx, t)
	return mapErr(err, "task")
}

func (r *TaskRepo) Get(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	return r.findOne(ctx, bson.M{"_id": id, "active": true})
}

func (r *TaskRepo) FindVisible(ctx context.Context, scope access.Scope, id primitive.ObjectID) (*model.Task, error) {
	filter := access.TaskFilter(scope)
	filter["_id"] = id
	return r.findOne(ctx, filter)
}

func (r *TaskRepo) FindByDelegation(ctx context.Context, requestId primitive.ObjectID) (*model.Task, error) {
	t, err := r.findOne(ctx, bson.M{"delegationRequests._id": requestId, "active": true})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, mapErr(mongo.ErrNoDocuments, "delegation request")
	}
	return t, err
}

func (r *TaskRepo) findOne(ctx context.Context, filter bson.M) (*model.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var t model.Task
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		return nil, mapErr(err, "task")
	}
	return &t, nil
}

func (r *TaskRepo) List(ctx context.Context, scope access.Scope, q TaskQuery) ([]*model.Task, error) {
	filter := access.TaskFilter(scope)
	if !q.Project.IsZero() {
		filter["project"] = q.Project
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return r.find(ctx, filter)
}

func (r *TaskRepo) PendingFor(ctx context.Context, userId, company primitive.ObjectID) ([]*model.Task, error) {
	filter := bson.M{
		"active": true,
		"delegationRequests": bson.M{"$elemMatch": bson.M{
			"toUser": userId,
			"status": statemachine.DelegationPending,
		}},
	}
	if !company.IsZero() {
		filter["company"] = company
	}
	return r.find(ctx, filter)
}

func (r *TaskRepo) find(ctx context.Context, filter bson.M) ([]*model.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(err, "task")
	}
	defer cursor.Close(ctx)

	tasks := make([]*model.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, mapErr(err, "task")
	}
	return tasks, nil
}

// Save writes the editable fields of t. Status, assignee and the embedded
// lists change only through their dedicated operations.
func (r *TaskRepo) Save(ctx context.Context, t *model.Task) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	t.UpdatedAt = time.Now()
	res, err := r.coll.UpdateByID(ctx, t.ID, bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"deadline":    t.Deadline,
		"active":      t.Active,
		"updatedAt":   t.UpdatedAt,
	}})
	if err != nil {
		return mapErr(err, "task")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "task")
	}
	return nil
}

func (r *TaskRepo) SetStatus(ctx context.Context, id primitive.ObjectID, from, to statemachine.TaskStatus) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "active": true, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, mapErr(err, "task")
	}
	return res.MatchedCount == 1, nil
}

func (r *TaskRepo) AddComment(ctx context.Context, id primitive.ObjectID, c model.Comment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{
			"$push": bson.M{"comments": c},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return mapErr(err, "task")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "task")
	}
	return nil
}

func (r *TaskRepo) PushDelegation(ctx context.Context, id, assignee primitive.ObjectID, req model.DelegationRequest) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"active":     true,
		"assignedTo": assignee,
		"delegationRequests": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"fromUser": req.FromUser,
			"status":   statemachine.DelegationPending,
		}}},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"delegationRequests": req},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return false, mapErr(err, "task")
	}
	return res.ModifiedCount == 1, nil
}

func (r *TaskRepo) ResolveDelegation(ctx context.Context, requestId, toUser primitive.ObjectID, status statemachine.DelegationStatus, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"active": true,
		"delegationRequests": bson.M{"$elemMatch": bson.M{
			"_id":    requestId,
			"toUser": toUser,
			"status": statemachine.DelegationPending,
		}},
	}
	set := bson.M{
		"delegationRequests.$.status":     status,
		"delegationRequests.$.resolvedAt": at,
		"updatedAt":                       at,
	}
	if status == statemachine.DelegationAccepted {
		set["assignedTo"] = toUser
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, mapErr(err, "task")
	}
	return res.ModifiedCount == 1, nil
}
