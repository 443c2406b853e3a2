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

type CompanyService struct {
	companies repo.ICompanyRepository
	users     repo.IUserRepository
}

func NewCompanyService(companies repo.ICompanyRepository, users repo.IUserRepository) *CompanyService {
	return &CompanyService{companies: companies, users: users}
}

// CompanyDetail is a company with its administrator.
type CompanyDetail struct {
	*model.Company
	AdminUser *model.User `json:"adminUser,omitempty"`
}

// Create registers a company together with its administrator account.
func (s *CompanyService) Create(ctx context.Context, caller *model.User, req *model.CreateCompanyReq) (*CompanyDetail, error) {
	if caller.Role != model.RoleSuperAdmin {
		return nil, apperrors.Forbidden("only the top-level administrator can create companies")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("company name is required")
	}
	adminName := strings.TrimSpace(req.AdminName)
	adminEmail := strings.ToLower(strings.TrimSpace(req.AdminEmail))
	if adminName == "" || !validEmail(adminEmail) {
		return nil, apperrors.Validation("administrator name and a valid email are required")
	}
	hash, err := HashPassword(req.AdminPassword)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, adminEmail); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	c := &model.Company{Name: name, Active: true}
	if err := s.companies.Create(ctx, c); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("company name already exists")
		}
		log.Errorw("create company failed", "name", name, "error", err)
		return nil, err
	}

	admin := &model.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: hash,
		Role:     model.RoleAdmin,
		Company:  c.ID,
		Teams:    []primitive.ObjectID{},
		Active:   true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		log.Errorw("create company administrator failed", "companyId", c.ID.Hex(), "error", err)
		c.Active = false
		_ = s.companies.Save(ctx, c)
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, err
	}

	c.Admin = admin.ID
	if err := s.companies.Save(ctx, c); err != nil {
		log.Errorw("set company administrator failed", "companyId", c.ID.Hex(), "error", err)
		return nil, err
	}
	if err := s.companies.AddRef(ctx, c.ID, repo.CompanyEmployees, admin.ID); err != nil {
		log.Warnw("add administrator to employees failed", "companyId", c.ID.Hex(), "error", err)
	}
	c.Employees = append(c.Employees, admin.ID)

	log.Infow("company created", "companyId", c.ID.Hex(), "adminId", admin.ID.Hex())
	return &CompanyDetail{Company: c, AdminUser: admin}, nil
}

func (s *CompanyService) List(ctx context.Context, caller *model.User) ([]*model.Company, error) {
	if caller.Role == model.RoleSuperAdmin {
		return s.companies.List(ctx)
	}
	if caller.Company.IsZero() {
		return []*model.Company{}, nil
	}
	c, err := s.companies.Get(ctx, caller.Company)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []*model.Company{}, nil
		}
		return nil, err
	}
	return []*model.Company{c}, nil
}

func (s *CompanyService) Get(ctx context.Context, caller *model.User, idHex string) (*model.Company, error) {
	id, err := model.ParseID(idHex, "company")
	if err != nil {
		return nil, err
	}
	if !access.ScopeOf(caller).SameCompany(id) {
		return nil, apperrors.NotFound("company not found")
	}
	return s.companies.Get(ctx, id)
}

func (s *CompanyService) Update(ctx context.Context, caller *model.User, idHex string, req *model.UpdateCompanyReq) (*model.Company, error) {
	c, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCompany(access.ScopeOf(caller), c.ID) {
		return nil, apperrors.Forbidden("not allowed to manage this company")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("company name cannot be empty")
		}
		c.Name = name
	}
	if err := s.companies.Save(ctx, c); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("company name already exists")
		}
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a company; its users and projects stay untouched.
func (s *CompanyService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	if caller.Role != model.RoleSuperAdmin {
		return apperrors.Forbidden("only the top-level administrator can delete companies")
	}
	c, err := s.Get(ctx, caller, idHex)
	if err != nil {
		return err
	}
	c.Active = false
	if err := s.companies.Save(ctx, c); err != nil {
		log.Errorw("delete company failed", "companyId", c.ID.Hex(), "error", err)
		return err
	}
	log.Infow("company deleted", "companyId", c.ID.Hex())
	return nil
}
