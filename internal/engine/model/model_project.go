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

	"github.com/bytedance/sonic"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionProject = "projects"

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Project struct {
	BaseModel   `bson:",inline"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Company     primitive.ObjectID   `bson:"company" json:"company"`
	Team        primitive.ObjectID   `bson:"team,omitempty" json:"team,omitempty"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Tasks       []primitive.ObjectID `bson:"tasks" json:"tasks"`
	Status      ProjectStatus        `bson:"status" json:"status"`
	Priority    Priority             `bson:"priority" json:"priority"`
	StartDate   *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	Deadline    *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	ChatRoom    string               `bson:"chatRoom" json:"chatRoom"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	Active      bool                 `bson:"active" json:"active"`
}

func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	return sonic.Marshal(struct {
		project
		Team *primitive.ObjectID `json:"team,omitempty"`
	}{project(p), OptionalID(p.Team)})
}

// IsMember reports whether userId is listed on the project.
func (p *Project) IsMember(userId primitive.ObjectID) bool {
	return ContainsID(p.Members, userId)
}

type CreateProjectReq struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CompanyId   string     `json:"companyId"`
	TeamId      string     `json:"teamId"`
	MemberIds   []string   `json:"memberIds"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	Deadline    *time.Time `json:"deadline"`
}

type UpdateProjectReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	Deadline    *time.Time `json:"deadline"`
}

type ProjectMemberReq struct {
	UserId string `json:"userId"`
}
