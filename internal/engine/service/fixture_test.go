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

package service

import (
	"context"
	"testing"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testPassword = "s3cret-pass"

// fixture is one company with an administrator and three employees. Alice and Bob
// are members of project "Apollo"; Carol is on another team and sees nothing of it.
// Alice is assigned task "Ship it".
type fixture struct {
	ctx context.Context

	users     *fakeUsers
	companies *fakeCompanies
	teams     *fakeTeams
	projects  *fakeProjects
	tasks     *fakeTasks
	chat      *fakeChat
	sessions  *fakeSessions
	store     *fakeStore
	hub       *ws.DefaultHub
	metrics   *metrics.Metrics
	svc       *Services

	company                 *model.Company
	root, admin, alice, bob *model.User
	carol                   *model.User
	coreTeam, opsTeam       *model.Team
	project                 *model.Project
	task                    *model.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		users:     newFakeUsers(),
		companies: newFakeCompanies(),
		teams:     newFakeTeams(),
		projects:  newFakeProjects(),
		tasks:     newFakeTasks(),
		chat:      newFakeChat(),
		sessions:  newFakeSessions(),
		store:     newFakeStore(),
		hub:       ws.NewHub(),
		metrics:   metrics.NewMetrics(),
	}
	f.svc = NewServices(Deps{
		Repos: &repo.Repositories{
			User:    f.users,
			Company: f.companies,
			Team:    f.teams,
			Project: f.projects,
			Task:    f.tasks,
			Chat:    f.chat,
		},
		Local:       cache.NewLocalCache(0),
		Sessions:    f.sessions,
		Auth:        http.Auth{SecretKey: "test-secret", AccessExpire: 60, RefreshExpire: 600},
		Hub:         f.hub,
		Broadcaster: realtime.NewHub(f.hub),
		Storage:     f.store,
		MaxUpload:   1024,
		Metrics:     f.metrics,
	})

	f.company = &model.Company{Name: "Acme", Active: true}
	require.NoError(t, f.companies.Create(f.ctx, f.company))

	f.root = f.user(t, "Root", model.RoleSuperAdmin, primitive.NilObjectID)
	f.admin = f.user(t, "Ada", model.RoleAdmin, f.company.ID)
	f.alice = f.user(t, "Alice", model.RoleEmployee, f.company.ID)
	f.bob = f.user(t, "Bob", model.RoleEmployee, f.company.ID)
	f.carol = f.user(t, "Carol", model.RoleEmployee, f.company.ID)

	f.coreTeam = f.team(t, "Core")
	f.opsTeam = f.team(t, "Ops", f.carol)

	f.project = &model.Project{
		Name:      "Apollo",
		Company:   f.company.ID,
		Team:      f.coreTeam.ID,
		CreatedBy: f.admin.ID,
		Members:   []primitive.ObjectID{f.alice.ID, f.bob.ID},
		Status:    model.ProjectInProgress,
		Priority:  model.PriorityHigh,
		ChatRoom:  "apollo-room",
		Active:    true,
	}
	require.NoError(t, f.projects.Create(f.ctx, f.project))

	f.task = &model.Task{
		Title:      "Ship it",
		Project:    f.project.ID,
		Company:    f.company.ID,
		AssignedTo: f.alice.ID,
		CreatedBy:  f.admin.ID,
		Status:     statemachine.TaskTodo,
		Priority:   model.PriorityMedium,
		Active:     true,
	}
	require.NoError(t, f.tasks.Create(f.ctx, f.task))
	return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role, company primitive.ObjectID) *model.User {
	t.Helper()
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)
	u := &model.User{
		Name:     name,
		Email:    name + "@acme.test",
		Password: hash,
		Role:     role,
		Company:  company,
		Active:   true,
	}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) team(t *testing.T, name string, members ...*model.User) *model.Team {
	t.Helper()
	team := &model.Team{Name: name, Company: f.company.ID, Active: true}
	for _, m := range members {
		team.Members = append(team.Members, m.ID)
	}
	require.NoError(t, f.teams.Create(f.ctx, team))
	require.NoError(t, f.users.AddTeam(f.ctx, team.Members, team.ID))
	for _, m := range members {
		m.Teams = append(m.Teams, team.ID)
	}
	return team
}

// reload returns the stored task.
func (f *fixture) reload(t *testing.T) *model.Task {
	t.Helper()
	task, err := f.tasks.Get(f.ctx, f.task.ID)
	require.NoError(t, err)
	return task
}
