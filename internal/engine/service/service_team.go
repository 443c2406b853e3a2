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

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TeamService struct {
	teams     repo.ITeamRepository
	users     repo.IUserRepository
	companies repo.ICompanyRepository
	identity  *IdentityService
}

func NewTeamService(teams repo.ITeamRepository, users repo.IUserRepository, companies repo.ICompanyRepository, identity *IdentityService) *TeamService {
	return &TeamService{teams: teams, users: users, companies: companies, identity: identity}
}

// targetCompany is the company an admin-tier caller acts on.
func targetCompany(caller *model.User, companyHex string) (primitive.ObjectID, error) {
	if caller.Role != model.RoleSuperAdmin {
		return caller.Company, nil
	}
	if companyHex == "" {
		return primitive.NilObjectID, apperrors.Validation("companyId is required")
	}
	return model.ParseID(companyHex, "company")
}

func (s *TeamService) ensureUniqueName(ctx context.Context, company primitive.ObjectID, name string, self primitive.ObjectID) error {
	existing, err := s.teams.FindByName(ctx, company, name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return apperrors.Conflict("a team with this name already exists")
	}
	return nil
}

func (s *TeamService) Create(ctx context.Context, caller *model.User, req *model.CreateTeamReq) (*model.Team, error) {
	if !caller.Role.AdminTier() {
		return nil, apperrors.Forbidden("only administrators can create teams")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("team name is required")
	}
	company, err := targetCompany(caller, req.CompanyId)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.Get(ctx, company); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, company, name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	memberIds, err := model.ParseIDs(req.MemberIds, "member")
	if err != nil {
		return nil, err
	}
	var leader primitive.ObjectID
	if req.LeaderId != "" {
		if leader, err = model.ParseID(req.LeaderId, "leader"); err != nil {
			return nil, err
		}
		if !model.ContainsID(memberIds, leader) {
			memberIds = append(memberIds, leader)
		}
	}
	if _, err := companyMembers(ctx, s.users, company, memberIds); err != nil {
		return nil, err
	}

	t := &model.Team{
		Name:    name,
		Company: company,
		Leader:  leader,
		Members: memberIds,
		Active:  true,
	}
	if err := s.teams.Create(ctx, t); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("a team with this name already exists")
		}
		log.Errorw("create team failed", "name", name, "error", err)
		return nil, err
	}

	// membership on users and the company list are separate writes
	if err := s.users.AddTeam(ctx, memberIds, t.ID); err != nil {
		log.Errorw("add team to users failed", "teamId", t.ID.Hex(), "error", err)
	}
	if err := s.companies.AddRef(ctx, company, repo.CompanyTeams, t.ID); err != nil {
		log.Errorw("add team to company failed", "teamId", t.ID.Hex(), "error", err)
	}
	s.invalidate(memberIds...)

	log.Infow("team created", "teamId", t.ID.Hex(), "company", company.Hex(), "members", len(memberIds))
	return t, nil
}

func (s *TeamService) invalidate(ids ...primitive.ObjectID) {
	for _, id := range ids {
		s.identity.Invalidate(id)
	}
}

func (s *TeamService) List(ctx context.Context, caller *model.User) ([]*model.Team, error) {
	if caller.Role == model.RoleSuperAdmin {
		return s.teams.ListByCompany(ctx, primitive.NilObjectID)
	}
	if caller.Company.IsZero() {
		return []*model.Team{}, nil
	}
	return s.teams.ListByCompany(ctx, caller.Company)
}

func (s *TeamService) Get(ctx context.Context, caller *model.User, idHex string) (*model.Team, error) {
	id, err := model.ParseID(idHex, "team")
	if err != nil {
		return nil, err
	}
	t, err := s.teams.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ScopeOf(caller).SameCompany(t.Company) {
		return nil, apperrors.NotFound("team not found")
	}
	return t, nil
}

func (s *TeamService) manageable(ctx context.Context, caller *model.User, idHex string) (*model.Team, error) {
	t, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCompany(access.ScopeOf(caller), t.Company) {
		return nil, apperrors.Forbidden("only administrators can manage teams")
	}
	return t, nil
}

func (s *TeamService) Update(ctx context.Context, caller *model.User, idHex string, req *model.UpdateTeamReq) (*model.Team, error) {
	t, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("team name cannot be empty")
		}
		if err := s.ensureUniqueName(ctx, t.Company, name, t.ID); err != nil {
			return nil, err
		}
		t.Name = name
	}
	if req.LeaderId != nil {
		leader, err := model.ParseID(*req.LeaderId, "leader")
		if err != nil {
			return nil, err
		}
		if _, err := companyMembers(ctx, s.users, t.Company, []primitive.ObjectID{leader}); err != nil {
			return nil, err
		}
		if !model.ContainsID(t.Members, leader) {
			if err := s.addMember(ctx, t, leader); err != nil {
				return nil, err
			}
		}
		t.Leader = leader
	}
	if err := s.teams.Save(ctx, t); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("a team with this name already exists")
		}
		return nil, err
	}
	return t, nil
}

func (s *TeamService) addMember(ctx context.Context, t *model.Team, userId primitive.ObjectID) error {
	if err := s.teams.AddMember(ctx, t.ID, userId); err != nil {
		return err
	}
	if err := s.users.AddTeam(ctx, []primitive.ObjectID{userId}, t.ID); err != nil {
		log.Errorw("add team to user failed", "teamId", t.ID.Hex(), "userId", userId.Hex(), "error", err)
	}
	t.Members = append(t.Members, userId)
	s.invalidate(userId)
	return nil
}

func (s *TeamService) AddMember(ctx context.Context, caller *model.User, idHex string, req *model.TeamMemberReq) (*model.Team, error) {
	t, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	userId, err := model.ParseID(req.UserId, "user")
	if err != nil {
		return nil, err
	}
	if model.ContainsID(t.Members, userId) {
		return t, nil
	}
	if _, err := companyMembers(ctx, s.users, t.Company, []primitive.ObjectID{userId}); err != nil {
		return nil, err
	}
	if err := s.addMember(ctx, t, userId); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, caller *model.User, idHex, userHex string) (*model.Team, error) {
	t, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	userId, err := model.ParseID(userHex, "user")
	if err != nil {
		return nil, err
	}
	if !model.ContainsID(t.Members, userId) {
		return nil, apperrors.NotFound("user is not a member of this team")
	}
	if t.Leader == userId {
		return nil, apperrors.Validation("assign another leader before removing the current one")
	}
	if err := s.teams.RemoveMember(ctx, t.ID, userId); err != nil {
		return nil, err
	}
	if err := s.users.RemoveTeam(ctx, []primitive.ObjectID{userId}, t.ID); err != nil {
		log.Errorw("remove team from user failed", "teamId", t.ID.Hex(), "userId", userId.Hex(), "error", err)
	}
	s.invalidate(userId)

	members := t.Members[:0]
	for _, m := range t.Members {
		if m != userId {
			members = append(members, m)
		}
	}
	t.Members = members
	return t, nil
}

func (s *TeamService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	t, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return err
	}
	t.Active = false
	if err := s.teams.Save(ctx, t); err != nil {
		log.Errorw("delete team failed", "teamId", t.ID.Hex(), "error", err)
		return err
	}
	if err := s.users.RemoveTeam(ctx, t.Members, t.ID); err != nil {
		log.Errorw("remove team from users failed", "teamId", t.ID.Hex(), "error", err)
	}
	if err := s.companies.RemoveRef(ctx, t.Company, repo.CompanyTeams, t.ID); err != nil {
		log.Errorw("remove team from company failed", "teamId", t.ID.Hex(), "error", err)
	}
	s.invalidate(t.Members...)
	log.Infow("team deleted", "teamId", t.ID.Hex())
	return nil
}
