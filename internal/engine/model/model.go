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

	"github.com/go-arcade/taskflow/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseModel is embedded (inline) in every persisted document.
type BaseModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Touch stamps the timestamps for a new document.
func (m *BaseModel) Touch(now time.Time) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// Comment is an ordered, embedded note on a project or task.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type AddCommentReq struct {
	Text string `json:"text"`
}

// OptionalID returns nil for the zero id. Fixed-size ids are never dropped by
// `omitempty`, so JSON views of optional references go through a pointer.
func OptionalID(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Intersects reports whether a and b share an element.
func Intersects(a, b []primitive.ObjectID) bool {
	for _, v := range a {
		if ContainsID(b, v) {
			return true
		}
	}
	return false
}

// ParseID decodes a hex object id; what names the id in the validation message.
func ParseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Newf(apperrors.ErrValidation, "invalid %s id: %q", what, hex)
	}
	return id, nil
}

// ParseIDs decodes a list of hex object ids, dropping duplicates.
func ParseIDs(hexes []string, what string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := ParseID(h, what)
		if err != nil {
			return nil, err
		}
		if !ContainsID(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
