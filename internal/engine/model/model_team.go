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

import "go.mongodb.org/mongo-driver/bson/primitive"

const CollectionTeam = "teams"

type Team struct {
	BaseModel `bson:",inline"`
	Name      string               `bson:"name" json:"name"`
	Company   primitive.ObjectID   `bson:"company" json:"company"`
	Leader    primitive.ObjectID   `bson:"leader,omitempty" json:"leader,omitempty"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	Projects  []primitive.ObjectID `bson:"projects" json:"projects"`
	Active    bool                 `bson:"active" json:"active"`
}

type CreateTeamReq struct {
	Name      string   `json:"name"`
	CompanyId string   `json:"companyId"`
	LeaderId  string   `json:"leaderId"`
	MemberIds []string `json:"memberIds"`
}

type UpdateTeamReq struct {
	Name     *string `json:"name"`
	LeaderId *string `json:"leaderId"`
}

type TeamMemberReq struct {
	UserId string `json:"userId"`
}
