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
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/go-arcade/taskflow/pkg/ws"
)

// Services groups every service the router and the socket endpoint need.
type Services struct {
	Identity   *IdentityService
	Auth       *AuthService
	User       *UserService
	Company    *CompanyService
	Team       *TeamService
	Project    *ProjectService
	Task       *TaskService
	Delegation *DelegationService
	Chat       *ChatService
	Socket     *SocketHandler
	Sessions   SessionStore
}

// Deps are the collaborators NewServices wires together.
type Deps struct {
	Repos       *repo.Repositories
	Local       *cache.LocalCache
	Sessions    SessionStore
	Auth        http.Auth
	Hub         ws.Hub
	Broadcaster realtime.Broadcaster
	Storage     storage.StorageProvider
	MaxUpload   int64
	Metrics     *metrics.Metrics
}

func NewServices(d Deps) *Services {
	r := d.Repos
	identity := NewIdentityService(r.User, d.Local)
	chat := NewChatService(r.Chat, r.Project, r.Task, r.User, d.Broadcaster, d.Storage, d.MaxUpload, d.Metrics)

	return &Services{
		Identity:   identity,
		Auth:       NewAuthService(r.User, d.Sessions, identity, d.Auth),
		User:       NewUserService(r.User, r.Company, r.Team, identity),
		Company:    NewCompanyService(r.Company, r.User),
		Team:       NewTeamService(r.Team, r.User, r.Company, identity),
		Project:    NewProjectService(r.Project, r.Team, r.User, r.Company),
		Task:       NewTaskService(r.Task, r.Project, r.User),
		Delegation: NewDelegationService(r.Task, r.Project, r.User, d.Metrics),
		Chat:       chat,
		Socket:     NewSocketHandler(chat, identity, d.Hub, d.Broadcaster, d.Metrics),
		Sessions:   d.Sessions,
	}
}
