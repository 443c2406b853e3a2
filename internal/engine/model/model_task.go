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

package model

import (
	"time"

	"github.com/go-arcade/taskflow/pkg/statemachine"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionTask = "tasks"

type Task struct {
	BaseModel          `bson:",inline"`
	Title              string                  `bson:"title" json:"title"`
	Description        string                  `bson:"description" json:"description"`
	Project            primitive.ObjectID      `bson:"project" json:"project"`
	Company            primitive.ObjectID      `bson:"company" json:"company"`
	AssignedTo         primitive.ObjectID      `bson:"assignedTo" json:"assignedTo"`
	CreatedBy          primitive.ObjectID      `bson:"createdBy" json:"createdBy"`
	Status             statemachine.TaskStatus `bson:"status" json:"status"`
	Priority           Priority                `bson:"priority" json:"priority"`
	Deadline           *time.Time              `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Comments           []Comment               `bson:"comments" json:"comments"`
	DelegationRequests []DelegationRequest     `bson:"delegationRequests" json:"delegationRequests"`
	Active             bool                    `bson:"active" json:"active"`
}

// PendingFrom returns the pending request raised by userId, if any.
func (t *Task) PendingFrom(userId primitive.ObjectID) *DelegationRequest {
	for i := range t.DelegationRequests {
		r := &t.DelegationRequests[i]
		if r.FromUser == userId && r.Status == statemachine.DelegationPending {
			return r
		}
	}
	return nil
}

// Request returns the embedded request with the given id.
func (t *Task) Request(id primitive.ObjectID) *DelegationRequest {
	for i := range t.DelegationRequests {
		if t.DelegationRequests[i].ID == id {
			return &t.DelegationRequests[i]
		}
	}
	return nil
}

// DelegationRequest is one entry of a task's delegation log.
type DelegationRequest struct {
	ID         primitive.ObjectID            `bson:"_id" json:"id"`
	FromUser   primitive.ObjectID            `bson:"fromUser" json:"fromUser"`
	ToUser     primitive.ObjectID            `bson:"toUser" json:"toUser"`
	Reason     string                        `bson:"reason" json:"reason"`
	Status     statemachine.DelegationStatus `bson:"status" json:"status"`
	CreatedAt  time.Time                     `bson:"createdAt" json:"createdAt"`
	ResolvedAt *time.Time                    `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// PendingDelegation is a pending request addressed to the caller, joined with its task and project.
type PendingDelegation struct {
	DelegationRequest
	TaskId      primitive.ObjectID `json:"taskId"`
	TaskTitle   string             `json:"taskTitle"`
	ProjectId   primitive.ObjectID `json:"projectId"`
	ProjectName string             `json:"projectName"`
	From        *UserSummary       `json:"from,omitempty"`
}

type CreateTaskReq struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ProjectId    string     `json:"projectId"`
	AssignedToId string     `json:"assignedTo"`
	Priority     string     `json:"priority"`
	Deadline     *time.Time `json:"deadline"`
}

type UpdateTaskReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

type TaskStatusReq struct {
	Status string `json:"status"`
}

type DelegateReq struct {
	ToUserId string `json:"toUserId"`
	Reason   string `json:"reason"`
}

type ResolveDelegationReq struct {
	Action string `json:"action"`
}
