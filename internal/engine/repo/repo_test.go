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

package repo

import (
	"errors"
	"testing"

	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil, "task"))

	err := mapErr(mongo.ErrNoDocuments, "task")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "task not found", err.Error())

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	err = mapErr(dup, "team")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "team already exists", err.Error())

	boom := errors.New("connection reset")
	err = mapErr(boom, "project")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepositoriesOwnIndexes(t *testing.T) {
	var db *mongo.Database
	client, err := mongo.NewClient()
	if err == nil {
		db = client.Database("taskflow_test")
	}
	if db == nil {
		t.Skip("mongo client unavailable")
	}
	repos := NewRepositories(db)
	for _, r := range []any{repos.User, repos.Company, repos.Team, repos.Project, repos.Task, repos.Chat} {
		ix, ok := r.(indexed)
		if assert.True(t, ok, "%T", r) {
			assert.NotEmpty(t, ix.indexes())
			assert.NotNil(t, ix.collection())
		}
	}
}
