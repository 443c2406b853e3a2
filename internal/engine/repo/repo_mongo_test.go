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
	"testing"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updated(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

// updateSent returns the filter and the update document of the single update
// statement the driver just sent.
func updateSent(mt *mtest.T) (bson.Raw, bson.Raw) {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)
	statements, err := evt.Command.Lookup("updates").Array().Values()
	require.NoError(mt, err)
	require.Len(mt, statements, 1)
	stmt := statements[0].Document()
	return stmt.Lookup("q").Document(), stmt.Lookup("u").Document()
}

func objectID(mt *mtest.T, doc bson.Raw, path ...string) primitive.ObjectID {
	mt.Helper()
	id, ok := doc.Lookup(path...).ObjectIDOK()
	require.True(mt, ok, "%v is not an object id", path)
	return id
}

func TestTaskRepo_PushDelegationGuard(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	taskId, alice, bob := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	req := model.DelegationRequest{
		ID:       primitive.NewObjectID(),
		FromUser: alice,
		ToUser:   bob,
		Reason:   "vacation",
		Status:   statemachine.DelegationPending,
	}

	mt.Run("appends when the guard matches", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		ok, err := NewTaskRepo(mt.DB).PushDelegation(context.Background(), taskId, alice, req)
		require.NoError(mt, err)
		assert.True(mt, ok)

		q, u := updateSent(mt)
		assert.Equal(mt, taskId, objectID(mt, q, "_id"))
		assert.Equal(mt, alice, objectID(mt, q, "assignedTo"))
		assert.True(mt, q.Lookup("active").Boolean())

		pending := q.Lookup("delegationRequests", "$not", "$elemMatch").Document()
		assert.Equal(mt, alice, objectID(mt, pending, "fromUser"))
		assert.Equal(mt, string(statemachine.DelegationPending), pending.Lookup("status").StringValue())

		pushed := u.Lookup("$push", "delegationRequests").Document()
		assert.Equal(mt, req.ID, objectID(mt, pushed, "_id"))
		assert.Equal(mt, bob, objectID(mt, pushed, "toUser"))
		assert.Equal(mt, "pending", pushed.Lookup("status").StringValue())
	})

	mt.Run("reports a lost race", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0))
		ok, err := NewTaskRepo(mt.DB).PushDelegation(context.Background(), taskId, alice, req)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestTaskRepo_ResolveDelegation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	requestId, bob := primitive.NewObjectID(), primitive.NewObjectID()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("accept reassigns in the same update", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		ok, err := NewTaskRepo(mt.DB).ResolveDelegation(context.Background(), requestId, bob, statemachine.DelegationAccepted, at)
		require.NoError(mt, err)
		assert.True(mt, ok)

		q, u := updateSent(mt)
		match := q.Lookup("delegationRequests", "$elemMatch").Document()
		assert.Equal(mt, requestId, objectID(mt, match, "_id"))
		assert.Equal(mt, bob, objectID(mt, match, "toUser"))
		assert.Equal(mt, "pending", match.Lookup("status").StringValue())

		set := u.Lookup("$set").Document()
		assert.Equal(mt, "accepted", set.Lookup("delegationRequests.$.status").StringValue())
		assert.True(mt, at.Equal(set.Lookup("delegationRequests.$.resolvedAt").Time()))
		assert.Equal(mt, bob, objectID(mt, set, "assignedTo"))
	})

	mt.Run("reject leaves the assignee alone", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		_, err := NewTaskRepo(mt.DB).ResolveDelegation(context.Background(), requestId, bob, statemachine.DelegationRejected, at)
		require.NoError(mt, err)

		_, u := updateSent(mt)
		set := u.Lookup("$set").Document()
		assert.Equal(mt, "rejected", set.Lookup("delegationRequests.$.status").StringValue())
		_, err = set.LookupErr("assignedTo")
		assert.Error(mt, err)
	})

	mt.Run("already processed", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0))
		ok, err := NewTaskRepo(mt.DB).ResolveDelegation(context.Background(), requestId, bob, statemachine.DelegationAccepted, at)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestChatRepo_HistoryFilter(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	project, task := primitive.NewObjectID(), primitive.NewObjectID()
	ns := "test." + model.CollectionChatMessage
	first := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "project", Value: project},
		{Key: "kind", Value: "text"},
		{Key: "content", Value: "hello"},
		{Key: "active", Value: true},
	}

	findSent := func(mt *mtest.T) bson.Raw {
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)
		sort := evt.Command.Lookup("sort").Document()
		elems, err := sort.Elements()
		require.NoError(mt, err)
		require.NotEmpty(mt, elems)
		assert.Equal(mt, "createdAt", elems[0].Key())
		return evt.Command.Lookup("filter").Document()
	}

	mt.Run("project level only", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, first))
		msgs, err := NewChatRepo(mt.DB).History(context.Background(), project, primitive.NilObjectID)
		require.NoError(mt, err)
		require.Len(mt, msgs, 1)
		assert.Equal(mt, "hello", msgs[0].Content)

		filter := findSent(mt)
		assert.Equal(mt, project, objectID(mt, filter, "project"))
		assert.False(mt, filter.Lookup("task", "$exists").Boolean())
		assert.True(mt, filter.Lookup("active").Boolean())
	})

	mt.Run("one task thread", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		msgs, err := NewChatRepo(mt.DB).History(context.Background(), project, task)
		require.NoError(mt, err)
		assert.Empty(mt, msgs)

		filter := findSent(mt)
		assert.Equal(mt, task, objectID(mt, filter, "task"))
	})
}
