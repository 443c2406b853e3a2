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

package statemachine

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskTesting    TaskStatus = "testing"
	TaskCompleted  TaskStatus = "completed"
)

func (ts TaskStatus) Valid() bool {
	switch ts {
	case TaskTodo, TaskInProgress, TaskTesting, TaskCompleted:
		return true
	}
	return false
}

// NewTaskStateMachine returns the task workflow. Work moves forward through testing,
// can step back one stage, and a completed task can only be reopened to in_progress.
func NewTaskStateMachine() *StateMachine[TaskStatus] {
	sm := NewWithState(TaskTodo)
	sm.Allow(TaskTodo, TaskInProgress).
		Allow(TaskInProgress, TaskTodo, TaskTesting).
		Allow(TaskTesting, TaskInProgress, TaskCompleted).
		Allow(TaskCompleted, TaskInProgress)
	return sm
}
