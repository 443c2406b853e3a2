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

package router

import (
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) companyRouter(r fiber.Router, auth fiber.Handler) {
	companyGroup := r.Group("/companies", auth)
	{
		companyGroup.Post("/", rt.createCompany)
		companyGroup.Get("/", rt.listCompanies)
		companyGroup.Get("/:companyId", rt.getCompany)
		companyGroup.Put("/:companyId", rt.updateCompany)
		companyGroup.Delete("/:companyId", rt.deleteCompany)
	}
}

// createCompany creates the company together with its administrator account.
func (rt *Router) createCompany(c *fiber.Ctx) error {
	var req model.CreateCompanyReq
	if !parseBody(c, &req) {
		return nil
	}
	detail, err := rt.Services.Company.Create(c.UserContext(), caller(c), &req)
	return reply(c, detail, err)
}

func (rt *Router) listCompanies(c *fiber.Ctx) error {
	companies, err := rt.Services.Company.List(c.UserContext(), caller(c))
	return reply(c, companies, err)
}

func (rt *Router) getCompany(c *fiber.Ctx) error {
	company, err := rt.Services.Company.Get(c.UserContext(), caller(c), c.Params("companyId"))
	return reply(c, company, err)
}

func (rt *Router) updateCompany(c *fiber.Ctx) error {
	var req model.UpdateCompanyReq
	if !parseBody(c, &req) {
		return nil
	}
	company, err := rt.Services.Company.Update(c.UserContext(), caller(c), c.Params("companyId"), &req)
	return reply(c, company, err)
}

func (rt *Router) deleteCompany(c *fiber.Ctx) error {
	return done(c, rt.Services.Company.Delete(c.UserContext(), caller(c), c.Params("companyId")))
}
