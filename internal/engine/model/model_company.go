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

const CollectionCompany = "companies"

type Company struct {
	BaseModel `bson:",inline"`
	Name      string               `bson:"name" json:"name"`
	Admin     primitive.ObjectID   `bson:"admin,omitempty" json:"admin,omitempty"`
	Employees []primitive.ObjectID `bson:"employees" json:"employees"`
	Teams     []primitive.ObjectID `bson:"teams" json:"teams"`
	Projects  []primitive.ObjectID `bson:"projects" json:"projects"`
	Active    bool                 `bson:"active" json:"active"`
}

// CreateCompanyReq creates a company together with its administrator account.
type CreateCompanyReq struct {
	Name          string `json:"name"`
	AdminName     string `json:"adminName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

type UpdateCompanyReq struct {
	Name *string `json:"name"`
}
