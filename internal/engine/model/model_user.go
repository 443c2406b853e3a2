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
	"github.com/bytedance/sonic"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleTeamLeader Role = "team_leader"
	RoleBugFixer   Role = "bug_fixer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee, RoleTeamLeader, RoleBugFixer:
		return true
	}
	return false
}

// AdminTier is true for roles that see a whole company (admin) or everything (superadmin).
func (r Role) AdminTier() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

const CollectionUser = "users"

type User struct {
	BaseModel `bson:",inline"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Role      Role                 `bson:"role" json:"role"`
	Company   primitive.ObjectID   `bson:"company,omitempty" json:"company,omitempty"`
	Teams     []primitive.ObjectID `bson:"teams" json:"teams"`
	Active    bool                 `bson:"active" json:"active"`
}

// MarshalJSON leaves out the company of the top-level administrator.
func (u User) MarshalJSON() ([]byte, error) {
	type user User
	return sonic.Marshal(struct {
		user
		Company *primitive.ObjectID `json:"company,omitempty"`
	}{user(u), OptionalID(u.Company)})
}

// UserSummary is the author/member projection joined into other responses.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  Role               `bson:"role" json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type CreateUserReq struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	CompanyId string `json:"companyId"`
}

type UpdateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
}

type SetActiveReq struct {
	Active bool `json:"active"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginResp struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpireAt     int64  `json:"expireAt"`
}
