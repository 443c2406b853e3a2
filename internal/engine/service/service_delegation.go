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
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errPendingDelegation   = apperrors.Validation("you already have a pending delegation request for this task")
	errDelegationProcessed = apperrors.Validation("delegation request already processed")
	errDelegationNotFound  = apperrors.NotFound("delegation request not found")
)

// DelegationService drives the per-task delegation requests:
// pending -> accepted | rejected. Every state change is one atomic update of the
// task document, so no locking happens here.
type DelegationService struct {
	tasks     repo.ITaskRepository
	projects  repo.IProjectRepository
	users     repo.IUserRepository
	lifecycle *statemachine.StateMachine[statemachine.DelegationStatus]
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDelegationService(tasks repo.ITaskRepository, projects repo.IProjectRepository, users repo.IUserRepository, m *metrics.Metrics) *DelegationService {
	return &DelegationService{
		tasks:     tasks,
		projects:  projects,
		users:     users,
		lifecycle: statemachine.NewDelegationStateMachine(),
		metrics:   m,
		now:       time.Now,
	}
}

// Create appends a pending request from the task's assignee to another project member.
// The assignee does not change until the request is accepted.
func (s *DelegationService) Create(ctx context.Context, caller *model.User, taskHex string, req *model.DelegateReq) (*model.Task, error) {
	taskId, err := model.ParseID(taskHex, "task")
	if err != nil {
		return nil, err
	}
	toUser, err := model.ParseID(req.ToUserId, "user")
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperrors.Validation("a reason is required to delegate a task")
	}

	// tasks outside the caller's scope answer exactly like missing ones
	t, err := s.tasks.FindVisible(ctx, access.ScopeOf(caller), taskId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, err
	}
	if t.AssignedTo != caller.ID {
		return nil, apperrors.Forbidden("only the assignee can delegate this task")
	}
	if toUser == caller.ID {
		return nil, apperrors.Validation("cannot delegate a task to yourself")
	}
	if t.PendingFrom(caller.ID) != nil {
		return nil, errPendingDelegation
	}

	p, err := s.projects.Get(ctx, t.Project)
	if err != nil {
		return nil, err
	}
	if !p.IsMember(toUser) {
		return nil, apperrors.Validation("the target user is not a member of this project")
	}
	company := caller.Company
	if company.IsZero() {
		company = t.Company
	}
	if _, err := companyMembers(ctx, s.users, company, []primitive.ObjectID{toUser}); err != nil {
		return nil, err
	}

	request := model.DelegationRequest{
		ID:        primitive.NewObjectID(),
		FromUser:  caller.ID,
		ToUser:    toUser,
		Reason:    reason,
		Status:    statemachine.DelegationPending,
		CreatedAt: s.now(),
	}
	ok, err := s.tasks.PushDelegation(ctx, t.ID, caller.ID, request)
	if err != nil {
		log.Errorw("append delegation request failed", "taskId", t.ID.Hex(), "error", err)
		return nil, err
	}
	if !ok {
		// the guard failed between the read and the write
		return nil, s.explainRejectedPush(ctx, t.ID, caller.ID)
	}

	s.metrics.Delegation(string(statemachine.DelegationPending))
	log.Infow("delegation requested", "taskId", t.ID.Hex(), "requestId", request.ID.Hex(),
		"from", caller.ID.Hex(), "to", toUser.Hex())

	t.DelegationRequests = append(t.DelegationRequests, request)
	return t, nil
}

func (s *DelegationService) explainRejectedPush(ctx context.Context, taskId, caller primitive.ObjectID) error {
	t, err := s.tasks.Get(ctx, taskId)
	if err != nil {
		return err
	}
	if t.AssignedTo != caller {
		return apperrors.Forbidden("only the assignee can delegate this task")
	}
	return errPendingDelegation
}

// Resolve accepts or rejects a pending request addressed to the caller. Accepting
// reassigns the task to the caller in the same update.
func (s *DelegationService) Resolve(ctx context.Context, caller *model.User, requestHex string, req *model.ResolveDelegationReq) (*model.Task, error) {
	target, ok := statemachine.DelegationTarget(statemachine.Event(req.Action))
	if !ok {
		return nil, apperrors.Validation("action must be accept or reject")
	}
	requestId, err := model.ParseID(requestHex, "delegation request")
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.FindByDelegation(ctx, requestId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, errDelegationNotFound
		}
		return nil, err
	}
	request := t.Request(requestId)
	if request == nil || request.ToUser != caller.ID {
		return nil, errDelegationNotFound
	}
	if err := s.lifecycle.Check(request.Status, target, statemachine.Event(req.Action)); err != nil {
		return nil, errDelegationProcessed
	}

	at := s.now()
	ok, err = s.tasks.ResolveDelegation(ctx, requestId, caller.ID, target, at)
	if err != nil {
		log.Errorw("resolve delegation request failed", "requestId", requestId.Hex(), "error", err)
		return nil, err
	}
	if !ok {
		return nil, errDelegationProcessed
	}

	s.metrics.Delegation(string(target))
	log.Infow("delegation resolved", "taskId", t.ID.Hex(), "requestId", requestId.Hex(),
		"status", target, "by", caller.ID.Hex())

	updated, err := s.tasks.Get(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListMine returns the pending requests addressed to the caller inside its company,
// oldest first.
func (s *DelegationService) ListMine(ctx context.Context, caller *model.User) ([]*model.PendingDelegation, error) {
	company := caller.Company
	if caller.Role == model.RoleSuperAdmin {
		company = primitive.NilObjectID
	}
	tasks, err := s.tasks.PendingFor(ctx, caller.ID, company)
	if err != nil {
		return nil, err
	}

	projectNames := make(map[primitive.ObjectID]string)
	var fromIds []primitive.ObjectID
	out := make([]*model.PendingDelegation, 0, len(tasks))
	for _, t := range tasks {
		if _, seen := projectNames[t.Project]; !seen {
			projectNames[t.Project] = ""
			if p, err := s.projects.Get(ctx, t.Project); err == nil {
				projectNames[t.Project] = p.Name
			} else if !apperrors.IsNotFound(err) {
				return nil, err
			}
		}
		for _, r := range t.DelegationRequests {
			if r.ToUser != caller.ID || r.Status != statemachine.DelegationPending {
				continue
			}
			out = append(out, &model.PendingDelegation{
				DelegationRequest: r,
				TaskId:            t.ID,
				TaskTitle:         t.Title,
				ProjectId:         t.Project,
			})
			if !model.ContainsID(fromIds, r.FromUser) {
				fromIds = append(fromIds, r.FromUser)
			}
		}
	}

	authors, err := summaries(ctx, s.users, fromIds)
	if err != nil {
		return nil, err
	}
	for _, pd := range out {
		pd.ProjectName = projectNames[pd.ProjectId]
		pd.From = authors[pd.FromUser]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// History returns every request recorded on a task the caller can see.
func (s *DelegationService) History(ctx context.Context, caller *model.User, taskHex string) ([]model.DelegationRequest, error) {
	taskId, err := model.ParseID(taskHex, "task")
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.FindVisible(ctx, access.ScopeOf(caller), taskId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, err
	}
	if t.DelegationRequests == nil {
		return []model.DelegationRequest{}, nil
	}
	return t.DelegationRequests, nil
}

// summaries loads user projections keyed by id. Missing users are simply absent.
func summaries(ctx context.Context, users repo.IUserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.UserSummary, error) {
	out := make(map[primitive.ObjectID]*model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		sum := u.Summary()
		out[u.ID] = &sum
	}
	return out, nil
}
