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
	"context"
	"time"

	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/database"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 5 * time.Second

// caseInsensitive backs the per-company unique names of teams and projects.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Repositories groups every repository of the service.
type Repositories struct {
	User    IUserRepository
	Company ICompanyRepository
	Team    ITeamRepository
	Project IProjectRepository
	Task    ITaskRepository
	Chat    IChatRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Company: NewCompanyRepo(db),
		Team:    NewTeamRepo(db),
		Project: NewProjectRepo(db),
		Task:    NewTaskRepo(db),
		Chat:    NewChatRepo(db),
	}
}

type indexed interface {
	collection() *mongo.Collection
	indexes() []mongo.IndexModel
}

// EnsureIndexes creates the indexes every collection relies on, including the
// unique ones that back the conflict errors.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for _, repo := range []any{r.User, r.Company, r.Team, r.Project, r.Task, r.Chat} {
		ix, ok := repo.(indexed)
		if !ok {
			continue
		}
		if err := database.EnsureIndexes(ctx, ix.collection(), ix.indexes()); err != nil {
			return err
		}
	}
	return nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}

// mapErr turns driver errors into caller-facing kinds; what names the document.
func mapErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.Newf(apperrors.ErrNotFound, "%s not found", what)
	case mongo.IsDuplicateKeyError(err):
		return apperrors.Newf(apperrors.ErrConflict, "%s already exists", what)
	}
	return errors.Wrapf(err, "%s query failed", what)
}
