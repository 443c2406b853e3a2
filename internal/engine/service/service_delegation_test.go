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

package service

import (
	"sync"
	"testing"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pendingCount(task *model.Task, from primitive.ObjectID) int {
	n := 0
	for _, r := range task.DelegationRequests {
		if r.FromUser == from && r.Status == statemachine.DelegationPending {
			n++
		}
	}
	return n
}

func TestDelegation_AcceptReassignsAndIsTerminal(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation

	task, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)
	require.Len(t, task.DelegationRequests, 1)
	req := task.DelegationRequests[0]
	assert.Equal(t, statemachine.DelegationPending, req.Status)
	assert.Equal(t, "vacation", req.Reason)
	assert.Equal(t, f.alice.ID, f.reload(t).AssignedTo, "assignee changes only on accept")

	task, err = d.Resolve(f.ctx, f.bob, req.ID.Hex(), &model.ResolveDelegationReq{Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, task.AssignedTo)
	resolved := task.Request(req.ID)
	require.NotNil(t, resolved)
	assert.Equal(t, statemachine.DelegationAccepted, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = d.Resolve(f.ctx, f.bob, req.ID.Hex(), &model.ResolveDelegationReq{Action: "accept"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "delegation request already processed", apperrors.Message(err, ""))

	_, err = d.Resolve(f.ctx, f.bob, req.ID.Hex(), &model.ResolveDelegationReq{Action: "reject"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	after := f.reload(t)
	assert.Equal(t, f.bob.ID, after.AssignedTo)
	assert.Equal(t, statemachine.DelegationAccepted, after.Request(req.ID).Status)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "taskflow_delegation_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "pending and accepted")
}

func TestDelegation_RejectKeepsAssignee(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation

	task, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "overloaded"})
	require.NoError(t, err)
	reqId := task.DelegationRequests[0].ID

	task, err = d.Resolve(f.ctx, f.bob, reqId.Hex(), &model.ResolveDelegationReq{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, task.AssignedTo)
	assert.Equal(t, statemachine.DelegationRejected, task.Request(reqId).Status)

	// a rejected request no longer blocks a new one
	task, err = d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "still overloaded"})
	require.NoError(t, err)
	assert.Len(t, task.DelegationRequests, 2)
}

func TestDelegation_SinglePendingPerRequester(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation

	_, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)

	_, err = d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "again"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 1, pendingCount(f.reload(t), f.alice.ID))
}

func TestDelegation_ConcurrentCreatesLeaveOnePending(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "race"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, pendingCount(f.reload(t), f.alice.ID))
}

func TestDelegation_CreateRejections(t *testing.T) {
	f := newFixture(t)
	outsider := f.user(t, "Olaf", model.RoleEmployee, f.company.ID)

	tests := []struct {
		name   string
		caller *model.User
		req    model.DelegateReq
		kind   error
	}{
		{"task not visible", f.bob, model.DelegateReq{ToUserId: f.alice.ID.Hex(), Reason: "x"}, apperrors.ErrNotFound},
		{"visible but not the assignee", f.admin, model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "x"}, apperrors.ErrForbidden},
		{"missing reason", f.alice, model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "  "}, apperrors.ErrValidation},
		{"to self", f.alice, model.DelegateReq{ToUserId: f.alice.ID.Hex(), Reason: "x"}, apperrors.ErrValidation},
		{"target outside project", f.alice, model.DelegateReq{ToUserId: outsider.ID.Hex(), Reason: "x"}, apperrors.ErrValidation},
		{"malformed target", f.alice, model.DelegateReq{ToUserId: "nope", Reason: "x"}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Delegation.Create(f.ctx, tt.caller, f.task.ID.Hex(), &tt.req)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := f.svc.Delegation.Create(f.ctx, f.alice, primitive.NewObjectID().Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, f.reload(t).DelegationRequests)
}

func TestDelegation_TargetInAnotherCompany(t *testing.T) {
	f := newFixture(t)
	other := &model.Company{Name: "Globex", Active: true}
	require.NoError(t, f.companies.Create(f.ctx, other))
	stranger := f.user(t, "Sam", model.RoleEmployee, other.ID)
	require.NoError(t, f.projects.AddMember(f.ctx, f.project.ID, stranger.ID))

	_, err := f.svc.Delegation.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: stranger.ID.Hex(), Reason: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDelegation_ResolveRejections(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation
	task, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)
	reqId := task.DelegationRequests[0].ID.Hex()

	_, err = d.Resolve(f.ctx, f.bob, reqId, &model.ResolveDelegationReq{Action: "maybe"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = d.Resolve(f.ctx, f.carol, reqId, &model.ResolveDelegationReq{Action: "accept"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = d.Resolve(f.ctx, f.bob, primitive.NewObjectID().Hex(), &model.ResolveDelegationReq{Action: "accept"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	after := f.reload(t)
	assert.Equal(t, f.alice.ID, after.AssignedTo)
	assert.Equal(t, 1, pendingCount(after, f.alice.ID))
}

func TestDelegation_OtherTenantSeesNotFound(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation
	task, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)
	reqId := task.DelegationRequests[0].ID.Hex()

	globex := &model.Company{Name: "Globex", Active: true}
	require.NoError(t, f.companies.Create(f.ctx, globex))
	mallory := f.user(t, "Mallory", model.RoleAdmin, globex.ID)
	delegate := &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "x"}
	accept := &model.ResolveDelegationReq{Action: "accept"}

	_, existing := d.Create(f.ctx, mallory, f.task.ID.Hex(), delegate)
	_, missing := d.Create(f.ctx, mallory, primitive.NewObjectID().Hex(), delegate)
	assert.ErrorIs(t, existing, apperrors.ErrNotFound)
	assert.Equal(t, missing.Error(), existing.Error())

	_, existing = d.Resolve(f.ctx, mallory, reqId, accept)
	_, missing = d.Resolve(f.ctx, mallory, primitive.NewObjectID().Hex(), accept)
	assert.ErrorIs(t, existing, apperrors.ErrNotFound)
	assert.Equal(t, missing.Error(), existing.Error())

	after := f.reload(t)
	assert.Equal(t, f.alice.ID, after.AssignedTo)
	assert.Equal(t, 1, pendingCount(after, f.alice.ID))
}

func TestDelegation_ResolveLeavesOtherRequestsPending(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation
	task, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)
	first := task.DelegationRequests[0].ID

	other := model.DelegationRequest{
		ID:       primitive.NewObjectID(),
		FromUser: f.carol.ID,
		ToUser:   f.bob.ID,
		Reason:   "seeded",
		Status:   statemachine.DelegationPending,
	}
	f.tasks.t.update(f.task.ID, func(t *model.Task) bool {
		t.DelegationRequests = append(t.DelegationRequests, other)
		return true
	})

	_, err = d.Resolve(f.ctx, f.bob, first.Hex(), &model.ResolveDelegationReq{Action: "reject"})
	require.NoError(t, err)
	after := f.reload(t)
	assert.Equal(t, statemachine.DelegationRejected, after.Request(first).Status)
	assert.Equal(t, statemachine.DelegationPending, after.Request(other.ID).Status)
}

func TestDelegation_ListMine(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation
	_, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)

	mine, err := d.ListMine(f.ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.task.ID, mine[0].TaskId)
	assert.Equal(t, "Ship it", mine[0].TaskTitle)
	assert.Equal(t, "Apollo", mine[0].ProjectName)
	require.NotNil(t, mine[0].From)
	assert.Equal(t, "Alice", mine[0].From.Name)

	none, err := d.ListMine(f.ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelegation_History(t *testing.T) {
	f := newFixture(t)
	d := f.svc.Delegation
	_, err := d.Create(f.ctx, f.alice, f.task.ID.Hex(), &model.DelegateReq{ToUserId: f.bob.ID.Hex(), Reason: "vacation"})
	require.NoError(t, err)

	history, err := d.History(f.ctx, f.admin, f.task.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = d.History(f.ctx, f.carol, f.task.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
