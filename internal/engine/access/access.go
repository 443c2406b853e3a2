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

// Package access narrows reads to the documents a caller may see. The same rules back
// both the mongo filters used by list queries and the in-memory checks used on single
// documents, so REST handlers and the realtime bridge agree on visibility.
package access

import (
	"github.com/go-arcade/taskflow/internal/engine/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope is the caller identity the predicate is evaluated against.
type Scope struct {
	Role      model.Role
	UserId    primitive.ObjectID
	CompanyId primitive.ObjectID
	TeamIds   []primitive.ObjectID
}

// ScopeOf builds the scope of an authenticated user.
func ScopeOf(u *model.User) Scope {
	return Scope{
		Role:      u.Role,
		UserId:    u.ID,
		CompanyId: u.Company,
		TeamIds:   u.Teams,
	}
}

func (s Scope) IsSuperAdmin() bool { return s.Role == model.RoleSuperAdmin }

func (s Scope) IsAdminTier() bool { return s.Role.AdminTier() }

// SameCompany reports whether company is inside the caller's company boundary.
// The top-level administrator has no boundary.
func (s Scope) SameCompany(company primitive.ObjectID) bool {
	return s.IsSuperAdmin() || (!s.CompanyId.IsZero() && s.CompanyId == company)
}

func teamIds(s Scope) []primitive.ObjectID {
	if s.TeamIds == nil {
		return []primitive.ObjectID{}
	}
	return s.TeamIds
}

// ProjectFilter is the query form of CanSeeProject.
func ProjectFilter(s Scope) bson.M {
	filter := bson.M{"active": true}
	if s.IsSuperAdmin() {
		return filter
	}
	filter["company"] = s.CompanyId
	if s.IsAdminTier() {
		return filter
	}
	filter["$or"] = bson.A{
		bson.M{"members": s.UserId},
		bson.M{"team": bson.M{"$in": teamIds(s)}},
	}
	return filter
}

// CanSeeProject reports whether the caller may read p.
func CanSeeProject(s Scope, p *model.Project) bool {
	if p == nil || !p.Active {
		return false
	}
	if s.IsSuperAdmin() {
		return true
	}
	if !s.SameCompany(p.Company) {
		return false
	}
	if s.IsAdminTier() {
		return true
	}
	if p.IsMember(s.UserId) {
		return true
	}
	return !p.Team.IsZero() && model.ContainsID(s.TeamIds, p.Team)
}

// TaskFilter is the query form of CanSeeTask.
func TaskFilter(s Scope) bson.M {
	filter := bson.M{"active": true}
	if s.IsSuperAdmin() {
		return filter
	}
	filter["company"] = s.CompanyId
	if s.IsAdminTier() {
		return filter
	}
	filter["$or"] = bson.A{
		bson.M{"assignedTo": s.UserId},
		bson.M{"createdBy": s.UserId},
	}
	return filter
}

// CanSeeTask reports whether the caller may read t.
func CanSeeTask(s Scope, t *model.Task) bool {
	if t == nil || !t.Active {
		return false
	}
	if s.IsSuperAdmin() {
		return true
	}
	if !s.SameCompany(t.Company) {
		return false
	}
	if s.IsAdminTier() {
		return true
	}
	return t.AssignedTo == s.UserId || t.CreatedBy == s.UserId
}

// CanManageCompany reports whether the caller administers company.
func CanManageCompany(s Scope, company primitive.ObjectID) bool {
	return s.IsAdminTier() && s.SameCompany(company)
}
