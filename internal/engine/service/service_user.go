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
	"net/mail"
	"strings"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type UserService struct {
	users     repo.IUserRepository
	companies repo.ICompanyRepository
	teams     repo.ITeamRepository
	identity  *IdentityService
}

func NewUserService(users repo.IUserRepository, companies repo.ICompanyRepository, teams repo.ITeamRepository, identity *IdentityService) *UserService {
	return &UserService{users: users, companies: companies, teams: teams, identity: identity}
}

// HashPassword validates and bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", apperrors.Newf(apperrors.ErrValidation, "password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Create adds a user. Company administrators create member-tier users inside their
// own company; the top-level administrator creates any role in any company.
func (s *UserService) Create(ctx context.Context, caller *model.User, req *model.CreateUserReq) (*model.User, error) {
	scope := access.ScopeOf(caller)
	if !scope.IsAdminTier() {
		return nil, apperrors.Forbidden("only administrators can create users")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !validEmail(email) {
		return nil, apperrors.Validation("a valid email is required")
	}
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperrors.Newf(apperrors.ErrValidation, "unknown role %q", role)
	}
	if !scope.IsSuperAdmin() && role.AdminTier() {
		return nil, apperrors.Forbidden("company administrators can only create member accounts")
	}

	company := caller.Company
	if scope.IsSuperAdmin() {
		company = primitive.NilObjectID
		if req.CompanyId != "" {
			id, err := model.ParseID(req.CompanyId, "company")
			if err != nil {
				return nil, err
			}
			company = id
		}
		if role != model.RoleSuperAdmin && company.IsZero() {
			return nil, apperrors.Validation("companyId is required")
		}
	}
	if !company.IsZero() {
		if _, err := s.companies.Get(ctx, company); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
		Company:  company,
		Teams:    []primitive.ObjectID{},
		Active:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("email is already registered")
		}
		log.Errorw("create user failed", "email", email, "error", err)
		return nil, err
	}
	if err := s.companies.AddRef(ctx, company, repo.CompanyEmployees, u.ID); err != nil {
		log.Errorw("add employee to company failed", "companyId", company.Hex(), "userId", u.ID.Hex(), "error", err)
	}

	log.Infow("user created", "userId", u.ID.Hex(), "role", role, "by", caller.ID.Hex())
	return u, nil
}

func (s *UserService) List(ctx context.Context, caller *model.User) ([]*model.User, error) {
	scope := access.ScopeOf(caller)
	if scope.IsSuperAdmin() {
		return s.users.ListByCompany(ctx, primitive.NilObjectID)
	}
	if caller.Company.IsZero() {
		return []*model.User{caller}, nil
	}
	return s.users.ListByCompany(ctx, caller.Company)
}

// Get returns a user of the caller's company, or the caller itself.
func (s *UserService) Get(ctx context.Context, caller *model.User, idHex string) (*model.User, error) {
	id, err := model.ParseID(idHex, "user")
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.ID != caller.ID && !access.ScopeOf(caller).SameCompany(u.Company) {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

// manageable loads a user the caller may administer.
func (s *UserService) manageable(ctx context.Context, caller *model.User, idHex string) (*model.User, error) {
	u, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	scope := access.ScopeOf(caller)
	if !access.CanManageCompany(scope, u.Company) {
		return nil, apperrors.Forbidden("not allowed to manage this user")
	}
	if !scope.IsSuperAdmin() && u.Role.AdminTier() && u.ID != caller.ID {
		return nil, apperrors.Forbidden("not allowed to manage an administrator")
	}
	return u, nil
}

// Update lets users edit their own profile and administrators edit their members.
func (s *UserService) Update(ctx context.Context, caller *model.User, idHex string, req *model.UpdateUserReq) (*model.User, error) {
	var (
		u   *model.User
		err error
	)
	self := idHex == caller.ID.Hex()
	if self {
		u, err = s.users.Get(ctx, caller.ID)
	} else {
		u, err = s.manageable(ctx, caller, idHex)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name cannot be empty")
		}
		u.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !validEmail(email) {
			return nil, apperrors.Validation("a valid email is required")
		}
		u.Email = email
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if req.Role != nil && *req.Role != u.Role {
		if self && caller.Role != model.RoleSuperAdmin {
			return nil, apperrors.Forbidden("cannot change your own role")
		}
		if !req.Role.Valid() {
			return nil, apperrors.Newf(apperrors.ErrValidation, "unknown role %q", *req.Role)
		}
		if req.Role.AdminTier() && caller.Role != model.RoleSuperAdmin {
			return nil, apperrors.Forbidden("company administrators can only assign member roles")
		}
		u.Role = *req.Role
	}

	if err := s.users.Save(ctx, u); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("email is already registered")
		}
		log.Errorw("update user failed", "userId", u.ID.Hex(), "error", err)
		return nil, err
	}
	s.identity.Invalidate(u.ID)
	return u, nil
}

func (s *UserService) SetActive(ctx context.Context, caller *model.User, idHex string, active bool) (*model.User, error) {
	if idHex == caller.ID.Hex() {
		return nil, apperrors.Validation("cannot change your own active state")
	}
	u, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	u.Active = active
	if err := s.users.Save(ctx, u); err != nil {
		log.Errorw("set user active failed", "userId", u.ID.Hex(), "error", err)
		return nil, err
	}
	s.identity.Invalidate(u.ID)
	log.Infow("user active state changed", "userId", u.ID.Hex(), "active", active, "by", caller.ID.Hex())
	return u, nil
}

// Delete soft-disables admin-tier accounts and removes member accounts.
func (s *UserService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	if idHex == caller.ID.Hex() {
		return apperrors.Validation("cannot delete yourself")
	}
	u, err := s.manageable(ctx, caller, idHex)
	if err != nil {
		return err
	}
	defer s.identity.Invalidate(u.ID)

	if u.Role.AdminTier() {
		u.Active = false
		if err := s.users.Save(ctx, u); err != nil {
			log.Errorw("disable user failed", "userId", u.ID.Hex(), "error", err)
			return err
		}
		log.Infow("administrator disabled", "userId", u.ID.Hex(), "by", caller.ID.Hex())
		return nil
	}

	if err := s.users.Delete(ctx, u.ID); err != nil {
		log.Errorw("delete user failed", "userId", u.ID.Hex(), "error", err)
		return err
	}
	for _, teamId := range u.Teams {
		if err := s.teams.RemoveMember(ctx, teamId, u.ID); err != nil && !apperrors.IsNotFound(err) {
			log.Warnw("remove deleted user from team failed", "userId", u.ID.Hex(), "teamId", teamId.Hex(), "error", err)
		}
	}
	if err := s.companies.RemoveRef(ctx, u.Company, repo.CompanyEmployees, u.ID); err != nil {
		log.Warnw("remove deleted user from company failed", "userId", u.ID.Hex(), "error", err)
	}
	log.Infow("user deleted", "userId", u.ID.Hex(), "by", caller.ID.Hex())
	return nil
}

// companyMembers loads ids and requires each to be an active user of company.
func companyMembers(ctx context.Context, users repo.IUserRepository, company primitive.ObjectID, ids []primitive.ObjectID) ([]*model.User, error) {
	found, err := users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[primitive.ObjectID]*model.User, len(found))
	for _, u := range found {
		byId[u.ID] = u
	}
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byId[id]
		if !ok || !u.Active {
			return nil, apperrors.Newf(apperrors.ErrValidation, "user %s not found or inactive", id.Hex())
		}
		if u.Company != company {
			return nil, apperrors.Newf(apperrors.ErrValidation, "user %s belongs to another company", id.Hex())
		}
		out = append(out, u)
	}
	return out, nil
}
