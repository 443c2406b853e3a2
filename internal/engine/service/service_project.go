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
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/id"
	"github.com/go-arcade/taskflow/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService struct {
	projects  repo.IProjectRepository
	teams     repo.ITeamRepository
	users     repo.IUserRepository
	companies repo.ICompanyRepository
}

func NewProjectService(projects repo.IProjectRepository, teams repo.ITeamRepository, users repo.IUserRepository, companies repo.ICompanyRepository) *ProjectService {
	return &ProjectService{projects: projects, teams: teams, users: users, companies: companies}
}

func canCreateProject(role model.Role) bool {
	return role.AdminTier() || role == model.RoleTeamLeader
}

func parseProjectStatus(raw string) (model.ProjectStatus, error) {
	s := model.ProjectStatus(raw)
	if !s.Valid() {
		return "", apperrors.Validationf("invalid project status: %q", raw)
	}
	return s, nil
}

func parsePriority(raw string) (model.Priority, error) {
	p := model.Priority(raw)
	if !p.Valid() {
		return "", apperrors.Validationf("invalid priority: %q", raw)
	}
	return p, nil
}

func checkDates(start, deadline *time.Time) error {
	if start != nil && deadline != nil && deadline.Before(*start) {
		return apperrors.Validation("deadline must not be before the start date")
	}
	return nil
}

func (s *ProjectService) ensureUniqueName(ctx context.Context, company primitive.ObjectID, name string, self primitive.ObjectID) error {
	existing, err := s.projects.FindByName(ctx, company, name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return apperrors.Conflict("a project with this name already exists")
	}
	return nil
}

func (s *ProjectService) Create(ctx context.Context, caller *model.User, req *model.CreateProjectReq) (*model.Project, error) {
	if !canCreateProject(caller.Role) {
		return nil, apperrors.Forbidden("only administrators and team leaders can create projects")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("project name is required")
	}
	company, err := targetCompany(caller, req.CompanyId)
	if err != nil {
		return nil, err
	}
	if company.IsZero() {
		return nil, apperrors.Validation("caller does not belong to a company")
	}
	if _, err := s.companies.Get(ctx, company); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, company, name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	status := model.ProjectNotStarted
	if req.Status != "" {
		if status, err = parseProjectStatus(req.Status); err != nil {
			return nil, err
		}
	}
	priority := model.PriorityMedium
	if req.Priority != "" {
		if priority, err = parsePriority(req.Priority); err != nil {
			return nil, err
		}
	}
	if err := checkDates(req.StartDate, req.Deadline); err != nil {
		return nil, err
	}

	var team primitive.ObjectID
	if req.TeamId != "" {
		if team, err = model.ParseID(req.TeamId, "team"); err != nil {
			return nil, err
		}
		t, err := s.teams.Get(ctx, team)
		if err != nil {
			return nil, err
		}
		if t.Company != company {
			return nil, apperrors.Validation("team belongs to another company")
		}
	}

	members, err := model.ParseIDs(req.MemberIds, "member")
	if err != nil {
		return nil, err
	}
	if !caller.Role.AdminTier() && !model.ContainsID(members, caller.ID) {
		members = append(members, caller.ID)
	}
	if _, err := companyMembers(ctx, s.users, company, members); err != nil {
		return nil, err
	}

	p := &model.Project{
		Name:        name,
		Description: req.Description,
		Company:     company,
		Team:        team,
		CreatedBy:   caller.ID,
		Members:     members,
		Tasks:       []primitive.ObjectID{},
		Status:      status,
		Priority:    priority,
		StartDate:   req.StartDate,
		Deadline:    req.Deadline,
		ChatRoom:    id.ShortId(),
		Comments:    []model.Comment{},
		Active:      true,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("a project with this name already exists")
		}
		log.Errorw("create project failed", "name", name, "error", err)
		return nil, err
	}

	if err := s.companies.AddRef(ctx, company, repo.CompanyProjects, p.ID); err != nil {
		log.Errorw("add project to company failed", "projectId", p.ID.Hex(), "error", err)
	}
	if !team.IsZero() {
		if err := s.teams.AddProject(ctx, team, p.ID); err != nil {
			log.Errorw("add project to team failed", "projectId", p.ID.Hex(), "teamId", team.Hex(), "error", err)
		}
	}
	log.Infow("project created", "projectId", p.ID.Hex(), "company", company.Hex(), "chatRoom", p.ChatRoom)
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, caller *model.User) ([]*model.Project, error) {
	return s.projects.List(ctx, access.ScopeOf(caller))
}

// Get returns the project when the caller passes the access predicate. A project the
// caller cannot see answers exactly like a missing one.
func (s *ProjectService) Get(ctx context.Context, caller *model.User, idHex string) (*model.Project, error) {
	projectId, err := model.ParseID(idHex, "project")
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, caller, projectId)
}

func (s *ProjectService) visible(ctx context.Context, caller *model.User, projectId primitive.ObjectID) (*model.Project, error) {
	p, err := s.projects.FindVisible(ctx, access.ScopeOf(caller), projectId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	return p, nil
}

// editable allows company administrators and the project's creator.
func (s *ProjectService) editable(ctx context.Context, caller *model.User, idHex string) (*model.Project, error) {
	p, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	scope := access.ScopeOf(caller)
	if access.CanManageCompany(scope, p.Company) || p.CreatedBy == caller.ID {
		return p, nil
	}
	return nil, apperrors.Forbidden("only administrators or the project creator can change this project")
}

func (s *ProjectService) Update(ctx context.Context, caller *model.User, idHex string, req *model.UpdateProjectReq) (*model.Project, error) {
	p, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("project name cannot be empty")
		}
		if err := s.ensureUniqueName(ctx, p.Company, name, p.ID); err != nil {
			return nil, err
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if p.Status, err = parseProjectStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if p.Priority, err = parsePriority(*req.Priority); err != nil {
			return nil, err
		}
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.Deadline != nil {
		p.Deadline = req.Deadline
	}
	if err := checkDates(p.StartDate, p.Deadline); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("a project with this name already exists")
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) AddMember(ctx context.Context, caller *model.User, idHex string, req *model.ProjectMemberReq) (*model.Project, error) {
	p, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	userId, err := model.ParseID(req.UserId, "user")
	if err != nil {
		return nil, err
	}
	if p.IsMember(userId) {
		return p, nil
	}
	if _, err := companyMembers(ctx, s.users, p.Company, []primitive.ObjectID{userId}); err != nil {
		return nil, err
	}
	if err := s.projects.AddMember(ctx, p.ID, userId); err != nil {
		return nil, err
	}
	p.Members = append(p.Members, userId)
	return p, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, caller *model.User, idHex, userHex string) (*model.Project, error) {
	p, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	userId, err := model.ParseID(userHex, "user")
	if err != nil {
		return nil, err
	}
	if !p.IsMember(userId) {
		return nil, apperrors.NotFound("user is not a member of this project")
	}
	if err := s.projects.RemoveMember(ctx, p.ID, userId); err != nil {
		return nil, err
	}
	members := p.Members[:0]
	for _, m := range p.Members {
		if m != userId {
			members = append(members, m)
		}
	}
	p.Members = members
	return p, nil
}

func (s *ProjectService) AddComment(ctx context.Context, caller *model.User, idHex string, req *model.AddCommentReq) (*model.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	p, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	c := model.Comment{
		ID:        primitive.NewObjectID(),
		Author:    caller.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.projects.AddComment(ctx, p.ID, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ProjectService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	p, err := s.editable(ctx, caller, idHex)
	if err != nil {
		return err
	}
	p.Active = false
	if err := s.projects.Save(ctx, p); err != nil {
		log.Errorw("delete project failed", "projectId", p.ID.Hex(), "error", err)
		return err
	}
	if err := s.companies.RemoveRef(ctx, p.Company, repo.CompanyProjects, p.ID); err != nil {
		log.Errorw("remove project from company failed", "projectId", p.ID.Hex(), "error", err)
	}
	log.Infow("project deleted", "projectId", p.ID.Hex())
	return nil
}
