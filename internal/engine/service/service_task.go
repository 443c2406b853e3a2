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
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	tasks    repo.ITaskRepository
	projects repo.IProjectRepository
	users    repo.IUserRepository
	workflow *statemachine.StateMachine[statemachine.TaskStatus]
}

func NewTaskService(tasks repo.ITaskRepository, projects repo.IProjectRepository, users repo.IUserRepository) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		workflow: statemachine.NewTaskStateMachine(),
	}
}

func (s *TaskService) Create(ctx context.Context, caller *model.User, req *model.CreateTaskReq) (*model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("task title is required")
	}
	projectId, err := model.ParseID(req.ProjectId, "project")
	if err != nil {
		return nil, err
	}
	assignee, err := model.ParseID(req.AssignedToId, "assignee")
	if err != nil {
		return nil, err
	}
	priority := model.PriorityMedium
	if req.Priority != "" {
		if priority, err = parsePriority(req.Priority); err != nil {
			return nil, err
		}
	}

	p, err := s.projects.FindVisible(ctx, access.ScopeOf(caller), projectId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	if !p.IsMember(assignee) {
		return nil, apperrors.Validation("assignee must be a member of the project")
	}
	if _, err := companyMembers(ctx, s.users, p.Company, []primitive.ObjectID{assignee}); err != nil {
		return nil, err
	}

	t := &model.Task{
		Title:              title,
		Description:        req.Description,
		Project:            p.ID,
		Company:            p.Company,
		AssignedTo:         assignee,
		CreatedBy:          caller.ID,
		Status:             statemachine.TaskTodo,
		Priority:           priority,
		Deadline:           req.Deadline,
		Comments:           []model.Comment{},
		DelegationRequests: []model.DelegationRequest{},
		Active:             true,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		log.Errorw("create task failed", "projectId", p.ID.Hex(), "error", err)
		return nil, err
	}
	if err := s.projects.AddTask(ctx, p.ID, t.ID); err != nil {
		log.Errorw("add task to project failed", "projectId", p.ID.Hex(), "taskId", t.ID.Hex(), "error", err)
	}
	log.Infow("task created", "taskId", t.ID.Hex(), "projectId", p.ID.Hex(), "assignedTo", assignee.Hex())
	return t, nil
}

// List returns visible tasks, optionally narrowed by project and status.
func (s *TaskService) List(ctx context.Context, caller *model.User, projectHex, status string) ([]*model.Task, error) {
	var q repo.TaskQuery
	if projectHex != "" {
		projectId, err := model.ParseID(projectHex, "project")
		if err != nil {
			return nil, err
		}
		q.Project = projectId
	}
	if status != "" {
		q.Status = statemachine.TaskStatus(status)
		if !q.Status.Valid() {
			return nil, apperrors.Validationf("invalid task status: %q", status)
		}
	}
	return s.tasks.List(ctx, access.ScopeOf(caller), q)
}

func (s *TaskService) Get(ctx context.Context, caller *model.User, idHex string) (*model.Task, error) {
	taskId, err := model.ParseID(idHex, "task")
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
	return t, nil
}

// editable allows company administrators and the task's creator.
func (s *TaskService) editable(ctx context.Context, caller *model.User, idHex string) (*model.Task, error) {
	t, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if access.CanManageCompany(access.ScopeOf(caller), t.Company) || t.CreatedBy == caller.ID {
		return t, nil
	}
	return nil, apperrors.Forbidden("only administrators or the task creator can change this task")
}

func (s *TaskService) Update(ctx context.Context, caller *model.User, idHex string, req *model.UpdateTaskReq) (*model.Task, error) {
	t, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("task title cannot be empty")
		}
		t.Title = title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		if t.Priority, err = parsePriority(*req.Priority); err != nil {
			return nil, err
		}
	}
	if req.Deadline != nil {
		t.Deadline = req.Deadline
	}
	if err := s.tasks.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeStatus moves the task along its workflow. The write is guarded on the status
// that was read, so two racing updates cannot both apply.
func (s *TaskService) ChangeStatus(ctx context.Context, caller *model.User, idHex string, req *model.TaskStatusReq) (*model.Task, error) {
	to := statemachine.TaskStatus(req.Status)
	if !to.Valid() {
		return nil, apperrors.Validationf("invalid task status: %q", req.Status)
	}
	t, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if t.Status == to {
		return t, nil
	}
	if err := s.workflow.Check(t.Status, to, ""); err != nil {
		return nil, apperrors.Validationf("cannot move task from %s to %s", t.Status, to)
	}
	ok, err := s.tasks.SetStatus(ctx, t.ID, t.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("task status was changed concurrently, reload and retry")
	}
	log.Infow("task status changed", "taskId", t.ID.Hex(), "from", t.Status, "to", to, "by", caller.ID.Hex())
	t.Status = to
	return t, nil
}

func (s *TaskService) AddComment(ctx context.Context, caller *model.User, idHex string, req *model.AddCommentReq) (*model.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	t, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	c := model.Comment{
		ID:        primitive.NewObjectID(),
		Author:    caller.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.tasks.AddComment(ctx, t.ID, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *TaskService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	t, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return err
	}
	t.Active = false
	if err := s.tasks.Save(ctx, t); err != nil {
		log.Errorw("delete task failed", "taskId", t.ID.Hex(), "error", err)
		return err
	}
	log.Infow("task deleted", "taskId", t.ID.Hex())
	return nil
}
