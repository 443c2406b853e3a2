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
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/statemachine"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clone copies a document through bson so fakes hand out detached values like a
// real driver does.
func clone[T any](v *T) *T {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := bson.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

type table[T any] struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]*T
	seq  []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[primitive.ObjectID]*T)}
}

func (t *table[T]) put(id primitive.ObjectID, v *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		t.seq = append(t.seq, id)
	}
	t.rows[id] = clone(v)
}

func (t *table[T]) get(id primitive.ObjectID, keep func(*T) bool) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok || (keep != nil && !keep(v)) {
		return nil, false
	}
	return clone(v), true
}

func (t *table[T]) all(keep func(*T) bool) []*T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*T, 0, len(t.seq))
	for _, id := range t.seq {
		v, ok := t.rows[id]
		if ok && (keep == nil || keep(v)) {
			out = append(out, clone(v))
		}
	}
	return out
}

// update applies fn to the stored row under the table lock; fn reports whether it matched.
func (t *table[T]) update(id primitive.ObjectID, fn func(*T) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return false
	}
	return fn(v)
}

func (t *table[T]) updateAll(fn func(*T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, id := range t.seq {
		if v, ok := t.rows[id]; ok && fn(v) {
			n++
		}
	}
	return n
}

func (t *table[T]) remove(id primitive.ObjectID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if model.ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func dropID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// users

type fakeUsers struct{ t *table[model.User] }

var _ repo.IUserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{t: newTable[model.User]()} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if len(f.t.all(func(x *model.User) bool { return x.Email == u.Email })) > 0 {
		return apperrors.Conflict("user already exists")
	}
	u.Touch(time.Now())
	f.t.put(u.ID, u)
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := f.t.get(id, nil)
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	found := f.t.all(func(u *model.User) bool { return u.Email == email })
	if len(found) == 0 {
		return nil, apperrors.NotFound("user not found")
	}
	return found[0], nil
}

func (f *fakeUsers) GetMany(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	return f.t.all(func(u *model.User) bool { return model.ContainsID(ids, u.ID) }), nil
}

func (f *fakeUsers) ListByCompany(_ context.Context, company primitive.ObjectID) ([]*model.User, error) {
	return f.t.all(func(u *model.User) bool { return company.IsZero() || u.Company == company }), nil
}

func (f *fakeUsers) Save(_ context.Context, u *model.User) error {
	ok := f.t.update(u.ID, func(x *model.User) bool {
		x.Name, x.Email, x.Password, x.Role, x.Active = u.Name, u.Email, u.Password, u.Role, u.Active
		x.UpdatedAt = time.Now()
		return true
	})
	if !ok {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if !f.t.remove(id) {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (f *fakeUsers) AddTeam(_ context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error {
	f.t.updateAll(func(u *model.User) bool {
		if model.ContainsID(userIds, u.ID) {
			u.Teams = addID(u.Teams, teamId)
			return true
		}
		return false
	})
	return nil
}

func (f *fakeUsers) RemoveTeam(_ context.Context, userIds []primitive.ObjectID, teamId primitive.ObjectID) error {
	f.t.updateAll(func(u *model.User) bool {
		if model.ContainsID(userIds, u.ID) {
			u.Teams = dropID(u.Teams, teamId)
			return true
		}
		return false
	})
	return nil
}

// companies

type fakeCompanies struct{ t *table[model.Company] }

var _ repo.ICompanyRepository = (*fakeCompanies)(nil)

func newFakeCompanies() *fakeCompanies { return &fakeCompanies{t: newTable[model.Company]()} }

func activeCompany(c *model.Company) bool { return c.Active }

func (f *fakeCompanies) Create(_ context.Context, c *model.Company) error {
	if len(f.t.all(func(x *model.Company) bool { return x.Active && strings.EqualFold(x.Name, c.Name) })) > 0 {
		return apperrors.Conflict("company already exists")
	}
	c.Touch(time.Now())
	f.t.put(c.ID, c)
	return nil
}

func (f *fakeCompanies) Get(_ context.Context, id primitive.ObjectID) (*model.Company, error) {
	c, ok := f.t.get(id, activeCompany)
	if !ok {
		return nil, apperrors.NotFound("company not found")
	}
	return c, nil
}

func (f *fakeCompanies) List(_ context.Context) ([]*model.Company, error) {
	return f.t.all(activeCompany), nil
}

func (f *fakeCompanies) Save(_ context.Context, c *model.Company) error {
	ok := f.t.update(c.ID, func(x *model.Company) bool {
		x.Name, x.Admin, x.Active = c.Name, c.Admin, c.Active
		return true
	})
	if !ok {
		return apperrors.NotFound("company not found")
	}
	return nil
}

func (f *fakeCompanies) refs(c *model.Company, field string) *[]primitive.ObjectID {
	switch field {
	case repo.CompanyEmployees:
		return &c.Employees
	case repo.CompanyTeams:
		return &c.Teams
	default:
		return &c.Projects
	}
}

func (f *fakeCompanies) AddRef(_ context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	f.t.update(id, func(c *model.Company) bool {
		list := f.refs(c, field)
		*list = addID(*list, ref)
		return true
	})
	return nil
}

func (f *fakeCompanies) RemoveRef(_ context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	f.t.update(id, func(c *model.Company) bool {
		list := f.refs(c, field)
		*list = dropID(*list, ref)
		return true
	})
	return nil
}

// teams

type fakeTeams struct{ t *table[model.Team] }

var _ repo.ITeamRepository = (*fakeTeams)(nil)

func newFakeTeams() *fakeTeams { return &fakeTeams{t: newTable[model.Team]()} }

func activeTeam(t *model.Team) bool { return t.Active }

func (f *fakeTeams) Create(_ context.Context, t *model.Team) error {
	t.Touch(time.Now())
	f.t.put(t.ID, t)
	return nil
}

func (f *fakeTeams) Get(_ context.Context, id primitive.ObjectID) (*model.Team, error) {
	t, ok := f.t.get(id, activeTeam)
	if !ok {
		return nil, apperrors.NotFound("team not found")
	}
	return t, nil
}

func (f *fakeTeams) FindByName(_ context.Context, company primitive.ObjectID, name string) (*model.Team, error) {
	found := f.t.all(func(t *model.Team) bool {
		return t.Active && t.Company == company && strings.EqualFold(t.Name, name)
	})
	if len(found) == 0 {
		return nil, apperrors.NotFound("team not found")
	}
	return found[0], nil
}

func (f *fakeTeams) ListByCompany(_ context.Context, company primitive.ObjectID) ([]*model.Team, error) {
	return f.t.all(func(t *model.Team) bool { return t.Active && (company.IsZero() || t.Company == company) }), nil
}

func (f *fakeTeams) Save(_ context.Context, t *model.Team) error {
	ok := f.t.update(t.ID, func(x *model.Team) bool {
		x.Name, x.Leader, x.Active = t.Name, t.Leader, t.Active
		return true
	})
	if !ok {
		return apperrors.NotFound("team not found")
	}
	return nil
}

func (f *fakeTeams) modify(id primitive.ObjectID, fn func(*model.Team)) error {
	ok := f.t.update(id, func(t *model.Team) bool {
		if !t.Active {
			return false
		}
		fn(t)
		return true
	})
	if !ok {
		return apperrors.NotFound("team not found")
	}
	return nil
}

func (f *fakeTeams) AddMember(_ context.Context, id, userId primitive.ObjectID) error {
	return f.modify(id, func(t *model.Team) { t.Members = addID(t.Members, userId) })
}

func (f *fakeTeams) RemoveMember(_ context.Context, id, userId primitive.ObjectID) error {
	return f.modify(id, func(t *model.Team) { t.Members = dropID(t.Members, userId) })
}

func (f *fakeTeams) AddProject(_ context.Context, id, projectId primitive.ObjectID) error {
	return f.modify(id, func(t *model.Team) { t.Projects = addID(t.Projects, projectId) })
}

// projects

type fakeProjects struct{ t *table[model.Project] }

var _ repo.IProjectRepository = (*fakeProjects)(nil)

func newFakeProjects() *fakeProjects { return &fakeProjects{t: newTable[model.Project]()} }

func activeProject(p *model.Project) bool { return p.Active }

func (f *fakeProjects) Create(_ context.Context, p *model.Project) error {
	p.Touch(time.Now())
	f.t.put(p.ID, p)
	return nil
}

func (f *fakeProjects) Get(_ context.Context, id primitive.ObjectID) (*model.Project, error) {
	p, ok := f.t.get(id, activeProject)
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	return p, nil
}

func (f *fakeProjects) FindVisible(_ context.Context, scope access.Scope, id primitive.ObjectID) (*model.Project, error) {
	p, ok := f.t.get(id, func(p *model.Project) bool { return access.CanSeeProject(scope, p) })
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	return p, nil
}

func (f *fakeProjects) List(_ context.Context, scope access.Scope) ([]*model.Project, error) {
	return f.t.all(func(p *model.Project) bool { return access.CanSeeProject(scope, p) }), nil
}

func (f *fakeProjects) FindByName(_ context.Context, company primitive.ObjectID, name string) (*model.Project, error) {
	found := f.t.all(func(p *model.Project) bool {
		return p.Active && p.Company == company && strings.EqualFold(p.Name, name)
	})
	if len(found) == 0 {
		return nil, apperrors.NotFound("project not found")
	}
	return found[0], nil
}

func (f *fakeProjects) Save(_ context.Context, p *model.Project) error {
	ok := f.t.update(p.ID, func(x *model.Project) bool {
		x.Name, x.Description, x.Status, x.Priority = p.Name, p.Description, p.Status, p.Priority
		x.StartDate, x.Deadline, x.Active = p.StartDate, p.Deadline, p.Active
		return true
	})
	if !ok {
		return apperrors.NotFound("project not found")
	}
	return nil
}

func (f *fakeProjects) modify(id primitive.ObjectID, fn func(*model.Project)) error {
	ok := f.t.update(id, func(p *model.Project) bool {
		if !p.Active {
			return false
		}
		fn(p)
		return true
	})
	if !ok {
		return apperrors.NotFound("project not found")
	}
	return nil
}

func (f *fakeProjects) AddMember(_ context.Context, id, userId primitive.ObjectID) error {
	return f.modify(id, func(p *model.Project) { p.Members = addID(p.Members, userId) })
}

func (f *fakeProjects) RemoveMember(_ context.Context, id, userId primitive.ObjectID) error {
	return f.modify(id, func(p *model.Project) { p.Members = dropID(p.Members, userId) })
}

func (f *fakeProjects) AddTask(_ context.Context, id, taskId primitive.ObjectID) error {
	return f.modify(id, func(p *model.Project) { p.Tasks = addID(p.Tasks, taskId) })
}

func (f *fakeProjects) AddComment(_ context.Context, id primitive.ObjectID, c model.Comment) error {
	return f.modify(id, func(p *model.Project) { p.Comments = append(p.Comments, c) })
}

// tasks

type fakeTasks struct{ t *table[model.Task] }

var _ repo.ITaskRepository = (*fakeTasks)(nil)

func newFakeTasks() *fakeTasks { return &fakeTasks{t: newTable[model.Task]()} }

func activeTask(t *model.Task) bool { return t.Active }

func (f *fakeTasks) Create(_ context.Context, t *model.Task) error {
	t.Touch(time.Now())
	f.t.put(t.ID, t)
	return nil
}

func (f *fakeTasks) Get(_ context.Context, id primitive.ObjectID) (*model.Task, error) {
	t, ok := f.t.get(id, activeTask)
	if !ok {
		return nil, apperrors.NotFound("task not found")
	}
	return t, nil
}

func (f *fakeTasks) FindVisible(_ context.Context, scope access.Scope, id primitive.ObjectID) (*model.Task, error) {
	t, ok := f.t.get(id, func(t *model.Task) bool { return access.CanSeeTask(scope, t) })
	if !ok {
		return nil, apperrors.NotFound("task not found")
	}
	return t, nil
}

func (f *fakeTasks) List(_ context.Context, scope access.Scope, q repo.TaskQuery) ([]*model.Task, error) {
	return f.t.all(func(t *model.Task) bool {
		return access.CanSeeTask(scope, t) &&
			(q.Project.IsZero() || t.Project == q.Project) &&
			(q.Status == "" || t.Status == q.Status)
	}), nil
}

func (f *fakeTasks) Save(_ context.Context, t *model.Task) error {
	ok := f.t.update(t.ID, func(x *model.Task) bool {
		x.Title, x.Description, x.Priority, x.Deadline, x.Active = t.Title, t.Description, t.Priority, t.Deadline, t.Active
		return true
	})
	if !ok {
		return apperrors.NotFound("task not found")
	}
	return nil
}

func (f *fakeTasks) SetStatus(_ context.Context, id primitive.ObjectID, from, to statemachine.TaskStatus) (bool, error) {
	return f.t.update(id, func(t *model.Task) bool {
		if !t.Active || t.Status != from {
			return false
		}
		t.Status = to
		return true
	}), nil
}

func (f *fakeTasks) AddComment(_ context.Context, id primitive.ObjectID, c model.Comment) error {
	ok := f.t.update(id, func(t *model.Task) bool {
		if !t.Active {
			return false
		}
		t.Comments = append(t.Comments, c)
		return true
	})
	if !ok {
		return apperrors.NotFound("task not found")
	}
	return nil
}

// PushDelegation applies the same guard as the mongo filter.
func (f *fakeTasks) PushDelegation(_ context.Context, id, assignee primitive.ObjectID, req model.DelegationRequest) (bool, error) {
	return f.t.update(id, func(t *model.Task) bool {
		if !t.Active || t.AssignedTo != assignee || t.PendingFrom(req.FromUser) != nil {
			return false
		}
		t.DelegationRequests = append(t.DelegationRequests, req)
		return true
	}), nil
}

func (f *fakeTasks) ResolveDelegation(_ context.Context, requestId, toUser primitive.ObjectID, status statemachine.DelegationStatus, at time.Time) (bool, error) {
	n := f.t.updateAll(func(t *model.Task) bool {
		r := t.Request(requestId)
		if r == nil || r.ToUser != toUser || r.Status != statemachine.DelegationPending {
			return false
		}
		r.Status = status
		r.ResolvedAt = &at
		if status == statemachine.DelegationAccepted {
			t.AssignedTo = toUser
		}
		return true
	})
	return n == 1, nil
}

func (f *fakeTasks) FindByDelegation(_ context.Context, requestId primitive.ObjectID) (*model.Task, error) {
	found := f.t.all(func(t *model.Task) bool { return t.Active && t.Request(requestId) != nil })
	if len(found) == 0 {
		return nil, apperrors.NotFound("delegation request not found")
	}
	return found[0], nil
}

func (f *fakeTasks) PendingFor(_ context.Context, userId, company primitive.ObjectID) ([]*model.Task, error) {
	return f.t.all(func(t *model.Task) bool {
		if !t.Active || (!company.IsZero() && t.Company != company) {
			return false
		}
		for _, r := range t.DelegationRequests {
			if r.ToUser == userId && r.Status == statemachine.DelegationPending {
				return true
			}
		}
		return false
	}), nil
}

// chat

type fakeChat struct{ t *table[model.ChatMessage] }

var _ repo.IChatRepository = (*fakeChat)(nil)

func newFakeChat() *fakeChat { return &fakeChat{t: newTable[model.ChatMessage]()} }

func (f *fakeChat) Create(_ context.Context, m *model.ChatMessage) error {
	m.Touch(time.Now())
	f.t.put(m.ID, m)
	return nil
}

func (f *fakeChat) Get(_ context.Context, id primitive.ObjectID) (*model.ChatMessage, error) {
	m, ok := f.t.get(id, func(m *model.ChatMessage) bool { return m.Active })
	if !ok {
		return nil, apperrors.NotFound("message not found")
	}
	return m, nil
}

func (f *fakeChat) History(_ context.Context, project, task primitive.ObjectID) ([]*model.ChatMessage, error) {
	out := f.t.all(func(m *model.ChatMessage) bool {
		return m.Active && m.Project == project && m.Task == task
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeChat) Save(_ context.Context, m *model.ChatMessage) error {
	ok := f.t.update(m.ID, func(x *model.ChatMessage) bool {
		x.Content, x.Code, x.Edited, x.EditedAt, x.Active = m.Content, m.Code, m.Edited, m.EditedAt, m.Active
		return true
	})
	if !ok {
		return apperrors.NotFound("message not found")
	}
	return nil
}

// sessions and storage

type fakeSessions struct {
	mu   sync.Mutex
	live map[string]string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{live: map[string]string{}} }

func (f *fakeSessions) Save(_ context.Context, userId, sessionId string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[userId] = sessionId
	return nil
}

func (f *fakeSessions) Session(_ context.Context, userId string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[userId], nil
}

func (f *fakeSessions) Delete(_ context.Context, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, userId)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (f *fakeStore) PutObject(_ context.Context, objectName string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return objectName, nil
}

func (f *fakeStore) GetObject(_ context.Context, objectName string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return nil, apperrors.NotFound("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	return nil
}

func (f *fakeStore) URL(_ context.Context, objectName string) (string, error) {
	return "/files/" + objectName, nil
}
