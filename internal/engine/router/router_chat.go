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
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) chatRouter(r fiber.Router, auth fiber.Handler) {
	chatGroup := r.Group("/chat", auth)
	{
		chatGroup.Post("/upload", rt.uploadChatFile)
		chatGroup.Put("/messages/:id", rt.editChatMessage)
		chatGroup.Delete("/messages/:id", rt.deleteChatMessage)
		chatGroup.Get("/:projectId", rt.chatHistory)
	}
}

// chatHistory returns project-level messages, or a task thread when taskId is set.
func (rt *Router) chatHistory(c *fiber.Ctx) error {
	messages, err := rt.Services.Chat.History(c.UserContext(), caller(c), c.Params("projectId"), c.Query("taskId"))
	return reply(c, messages, err)
}

func (rt *Router) uploadChatFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.UploadFileIsRequired, "")
	}
	f, err := fh.Open()
	if err != nil {
		log.Errorw("open uploaded file failed", "name", fh.Filename, "error", err)
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.UploadFileIsRequired, "")
	}
	defer f.Close()

	ref, err := rt.Services.Chat.Upload(c.UserContext(), caller(c), fh.Filename, fh.Size, fh.Header.Get(fiber.HeaderContentType), f)
	return reply(c, ref, err)
}

func (rt *Router) editChatMessage(c *fiber.Ctx) error {
	var req model.EditMessageReq
	if !parseBody(c, &req) {
		return nil
	}
	msg, err := rt.Services.Chat.Edit(c.UserContext(), caller(c), c.Params("id"), &req)
	return reply(c, msg, err)
}

func (rt *Router) deleteChatMessage(c *fiber.Ctx) error {
	return done(c, rt.Services.Chat.Delete(c.UserContext(), caller(c), c.Params("id")))
}
