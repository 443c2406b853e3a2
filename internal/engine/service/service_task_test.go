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
	"testing"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CreateRequiresProjectMember(t *testing.T) {
	f := newFixture(t)
	s := f.svc.Task

	_, err := s.Create(f.ctx, f.admin, &model.CreateTaskReq{Title: "Audit", ProjectId: f.project.ID.Hex(), AssignedToId: f.carol.ID.Hex()})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.Create(f.ctx, f.carol, &model.CreateTaskReq{Title: "Audit", ProjectId: f.project.ID.Hex(), AssignedToId: f.bob.ID.Hex()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.Create(f.ctx, f.admin, &model.CreateTaskReq{Title: " ", ProjectId: f.project.ID.Hex(), AssignedToId: f.bob.ID.Hex()})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	task, err := s.Create(f.ctx, f.alice, &model.CreateTaskReq{Title: "Audit", ProjectId: f.project.ID.Hex(), AssignedToId: f.bob.ID.Hex(), Priority: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, statemachine.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityUrgent, task.Priority)
	assert.Equal(t, f.company.ID, task.Company)

	p, err := f.projects.Get(f.ctx, f.project.ID)
	require.NoError(t, err)
	assert.Contains(t, p.Tasks, task.ID)
}

func TestTask_StatusWorkflow(t *testing.T) {
	f := newFixture(t)
	s := f.svc.Task
	id := f.task.ID.Hex()

	steps := []struct {
		to  statemachine.TaskStatus
		err error
	}{
		{statemachine.TaskCompleted, apperrors.ErrValidation},
		{statemachine.TaskInProgress, nil},
		{statemachine.TaskTesting, nil},
		{statemachine.TaskCompleted, nil},
		{statemachine.TaskTodo, apperrors.ErrValidation},
		{statemachine.TaskInProgress, nil},
	}
	for _, step := range steps {
		task, err := s.ChangeStatus(f.ctx, f.alice, id, &model.TaskStatusReq{Status: string(step.to)})
		if step.err != nil {
			assert.ErrorIs(t, err, step.err, "-> %s", step.to)
			continue
		}
		require.NoError(t, err, "-> %s", step.to)
		assert.Equal(t, step.to, task.Status)
	}
	assert.Equal(t, statemachine.TaskInProgress, f.reload(t).Status)

	_, err := s.ChangeStatus(f.ctx, f.alice, id, &model.TaskStatusReq{Status: "done"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTask_StatusWriteIsGuarded(t *testing.T) {
	f := newFixture(t)
	ok, err := f.tasks.SetStatus(f.ctx, f.task.ID, statemachine.TaskTesting, statemachine.TaskCompleted)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, statemachine.TaskTodo, f.reload(t).Status)
}

func TestTask_Visibility(t *testing.T) {
	f := newFixture(t)
	s := f.svc.Task

	_, err := s.Get(f.ctx, f.carol, f.task.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	mine, err := s.List(f.ctx, f.alice, "", "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := s.List(f.ctx, f.bob, f.project.ID.Hex(), "")
	require.NoError(t, err)
	assert.Empty(t, others)

	all, err := s.List(f.ctx, f.admin, f.project.ID.Hex(), string(statemachine.TaskTodo))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.List(f.ctx, f.admin, "", "later")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTask_UpdateCommentDelete(t *testing.T) {
	f := newFixture(t)
	s := f.svc.Task
	title := "Ship it now"

	_, err := s.Update(f.ctx, f.alice, f.task.ID.Hex(), &model.UpdateTaskReq{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	task, err := s.Update(f.ctx, f.admin, f.task.ID.Hex(), &model.UpdateTaskReq{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, task.Title)

	c, err := s.AddComment(f.ctx, f.alice, f.task.ID.Hex(), &model.AddCommentReq{Text: "on it"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, c.Author)
	assert.Len(t, f.reload(t).Comments, 1)

	require.NoError(t, s.Delete(f.ctx, f.admin, f.task.ID.Hex()))
	_, err = s.Get(f.ctx, f.admin, f.task.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
