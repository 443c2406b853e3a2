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
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/access"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/id"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService persists project chat and fans new messages out through the
// broadcaster. REST and socket callers share Authorize, so both surfaces apply the
// same visibility rule.
type ChatService struct {
	messages    repo.IChatRepository
	projects    repo.IProjectRepository
	tasks       repo.ITaskRepository
	users       repo.IUserRepository
	broadcaster realtime.Broadcaster
	store       storage.StorageProvider
	maxUpload   int64
	metrics     *metrics.Metrics
}

func NewChatService(
	messages repo.IChatRepository,
	projects repo.IProjectRepository,
	tasks repo.ITaskRepository,
	users repo.IUserRepository,
	broadcaster realtime.Broadcaster,
	store storage.StorageProvider,
	maxUpload int64,
	m *metrics.Metrics,
) *ChatService {
	return &ChatService{
		messages:    messages,
		projects:    projects,
		tasks:       tasks,
		users:       users,
		broadcaster: broadcaster,
		store:       store,
		maxUpload:   maxUpload,
		metrics:     m,
	}
}

// Authorize returns the project when the caller may read its chat.
func (s *ChatService) Authorize(ctx context.Context, caller *model.User, projectHex string) (*model.Project, error) {
	projectId, err := model.ParseID(projectHex, "project")
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindVisible(ctx, access.ScopeOf(caller), projectId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	return p, nil
}

// History returns the messages of a project in send order. Without a task only
// project-level messages are returned.
func (s *ChatService) History(ctx context.Context, caller *model.User, projectHex, taskHex string) ([]*model.ChatMessage, error) {
	p, err := s.Authorize(ctx, caller, projectHex)
	if err != nil {
		return nil, err
	}
	var taskId primitive.ObjectID
	if taskHex != "" {
		if taskId, err = s.projectTask(ctx, p, taskHex); err != nil {
			return nil, err
		}
	}
	msgs, err := s.messages.History(ctx, p.ID, taskId)
	if err != nil {
		return nil, err
	}
	if err := s.joinAuthors(ctx, msgs...); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *ChatService) projectTask(ctx context.Context, p *model.Project, taskHex string) (primitive.ObjectID, error) {
	taskId, err := model.ParseID(taskHex, "task")
	if err != nil {
		return primitive.NilObjectID, err
	}
	t, err := s.tasks.Get(ctx, taskId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return primitive.NilObjectID, apperrors.NotFound("task not found")
		}
		return primitive.NilObjectID, err
	}
	if t.Project != p.ID {
		return primitive.NilObjectID, apperrors.Validation("task does not belong to this project")
	}
	return t.ID, nil
}

func (s *ChatService) joinAuthors(ctx context.Context, msgs ...*model.ChatMessage) error {
	var ids []primitive.ObjectID
	for _, m := range msgs {
		if !model.ContainsID(ids, m.Sender) {
			ids = append(ids, m.Sender)
		}
	}
	authors, err := summaries(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		m.Author = authors[m.Sender]
	}
	return nil
}

// messageKind picks the payload kind. Exactly one of content, file or code is allowed.
func messageKind(content string, file *model.FileRef, code *model.CodeSnippet) (model.MessageKind, error) {
	var kinds []model.MessageKind
	if strings.TrimSpace(content) != "" {
		kinds = append(kinds, model.MessageText)
	}
	if file != nil {
		if file.ObjectName == "" {
			return "", apperrors.Validation("file messages need an uploaded file")
		}
		kinds = append(kinds, model.MessageFile)
	}
	if code != nil {
		if strings.TrimSpace(code.Snippet) == "" {
			return "", apperrors.Validation("code messages need a snippet")
		}
		kinds = append(kinds, model.MessageCode)
	}
	switch len(kinds) {
	case 0:
		return "", apperrors.Validation("message must have content, a file or a code snippet")
	case 1:
		return kinds[0], nil
	default:
		return "", apperrors.Validation("message must carry only one of content, file or code")
	}
}

// Send validates and stores a message, then delivers it to the project room and the
// project's chat room.
func (s *ChatService) Send(ctx context.Context, caller *model.User, req *model.SendMessageReq) (*model.ChatMessage, error) {
	kind, err := messageKind(req.Content, req.File, req.Code)
	if err != nil {
		return nil, err
	}
	p, err := s.Authorize(ctx, caller, req.ProjectId)
	if err != nil {
		return nil, err
	}
	if req.ChatRoom != "" && req.ChatRoom != p.ChatRoom {
		return nil, apperrors.Validation("chat room does not belong to this project")
	}
	var taskId primitive.ObjectID
	if req.TaskId != "" {
		if taskId, err = s.projectTask(ctx, p, req.TaskId); err != nil {
			return nil, err
		}
	}

	m := &model.ChatMessage{
		Project:  p.ID,
		Task:     taskId,
		ChatRoom: p.ChatRoom,
		Sender:   caller.ID,
		Kind:     kind,
		Active:   true,
	}
	switch kind {
	case model.MessageText:
		m.Content = strings.TrimSpace(req.Content)
	case model.MessageFile:
		if m.File, err = s.attachment(ctx, caller, req.File); err != nil {
			return nil, err
		}
	case model.MessageCode:
		m.Code = req.Code
	}
	if err := s.messages.Create(ctx, m); err != nil {
		log.Errorw("store chat message failed", "projectId", p.ID.Hex(), "error", err)
		return nil, err
	}
	summary := caller.Summary()
	m.Author = &summary

	s.metrics.ChatMessage(string(kind))
	s.publish(ctx, p, realtime.EventNewMessage, m)
	return m, nil
}

// uploadPrefix is the object name prefix of everything userId uploaded.
func uploadPrefix(userId primitive.ObjectID) string {
	return "chat/" + userId.Hex() + "/"
}

// attachment accepts only the caller's own uploads and rebuilds the fields the
// server owns.
func (s *ChatService) attachment(ctx context.Context, caller *model.User, f *model.FileRef) (*model.FileRef, error) {
	objectName := path.Clean(f.ObjectName)
	if objectName != f.ObjectName || !strings.HasPrefix(objectName, uploadPrefix(caller.ID)) {
		return nil, apperrors.Validation("file messages must reference a file you uploaded")
	}
	url, err := s.store.URL(ctx, objectName)
	if err != nil {
		return nil, err
	}
	return &model.FileRef{
		Name:       path.Base(objectName),
		Url:        url,
		ObjectName: objectName,
		Size:       f.Size,
		MimeType:   f.MimeType,
	}, nil
}

func (s *ChatService) publish(ctx context.Context, p *model.Project, event string, data any) {
	for _, room := range []string{realtime.ProjectRoom(p.ID.Hex()), realtime.ChatRoom(p.ChatRoom)} {
		if err := s.broadcaster.Emit(ctx, room, event, data, ""); err != nil {
			log.Warnw("broadcast chat event failed", "room", room, "event", event, "error", err)
		}
	}
}

func (s *ChatService) owned(ctx context.Context, caller *model.User, idHex string) (*model.ChatMessage, *model.Project, error) {
	msgId, err := model.ParseID(idHex, "message")
	if err != nil {
		return nil, nil, err
	}
	m, err := s.messages.Get(ctx, msgId)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NotFound("message not found")
		}
		return nil, nil, err
	}
	p, err := s.Authorize(ctx, caller, m.Project.Hex())
	if err != nil {
		return nil, nil, apperrors.NotFound("message not found")
	}
	return m, p, nil
}

// Edit lets the sender change the text or the snippet of a message.
func (s *ChatService) Edit(ctx context.Context, caller *model.User, idHex string, req *model.EditMessageReq) (*model.ChatMessage, error) {
	m, p, err := s.owned(ctx, caller, idHex)
	if err != nil {
		return nil, err
	}
	if m.Sender != caller.ID {
		return nil, apperrors.Forbidden("only the sender can edit a message")
	}
	switch m.Kind {
	case model.MessageText:
		if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
			return nil, apperrors.Validation("message content cannot be empty")
		}
		m.Content = strings.TrimSpace(*req.Content)
	case model.MessageCode:
		if req.Code == nil || strings.TrimSpace(req.Code.Snippet) == "" {
			return nil, apperrors.Validation("code messages need a snippet")
		}
		m.Code = req.Code
	default:
		return nil, apperrors.Validation("file messages cannot be edited")
	}
	now := time.Now()
	m.Edited = true
	m.EditedAt = &now
	if err := s.messages.Save(ctx, m); err != nil {
		return nil, err
	}
	if err := s.joinAuthors(ctx, m); err != nil {
		return nil, err
	}
	s.publish(ctx, p, realtime.EventMessageUpdated, m)
	return m, nil
}

// Delete removes a message. The sender and company administrators may delete.
func (s *ChatService) Delete(ctx context.Context, caller *model.User, idHex string) error {
	m, p, err := s.owned(ctx, caller, idHex)
	if err != nil {
		return err
	}
	if m.Sender != caller.ID && !access.CanManageCompany(access.ScopeOf(caller), p.Company) {
		return apperrors.Forbidden("only the sender or an administrator can delete a message")
	}
	m.Active = false
	if err := s.messages.Save(ctx, m); err != nil {
		return err
	}
	if m.File != nil && strings.HasPrefix(m.File.ObjectName, uploadPrefix(m.Sender)) {
		if err := s.store.Delete(ctx, m.File.ObjectName); err != nil {
			log.Warnw("delete chat attachment failed", "object", m.File.ObjectName, "error", err)
		}
	}
	s.publish(ctx, p, realtime.EventMessageDeleted, &model.MessageRemoved{ID: m.ID, Project: m.Project, Task: model.OptionalID(m.Task)})
	return nil
}

// Upload stores an attachment and returns the descriptor a file message echoes back.
func (s *ChatService) Upload(ctx context.Context, caller *model.User, name string, size int64, contentType string, r io.Reader) (*model.FileRef, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return nil, apperrors.Validation("file name is required")
	}
	if size <= 0 {
		return nil, apperrors.Validation("file is empty")
	}
	if s.maxUpload > 0 && size > s.maxUpload {
		return nil, apperrors.Validationf("file exceeds the %d MB limit", s.maxUpload/(1024*1024))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s%s/%s", uploadPrefix(caller.ID), strings.ToLower(id.GetUlid()), base)
	if _, err := s.store.PutObject(ctx, objectName, r, size, contentType); err != nil {
		log.Errorw("store upload failed", "object", objectName, "userId", caller.ID.Hex(), "error", err)
		return nil, err
	}
	url, err := s.store.URL(ctx, objectName)
	if err != nil {
		return nil, err
	}
	log.Infow("chat file uploaded", "object", objectName, "size", size, "userId", caller.ID.Hex())
	return &model.FileRef{
		Name:       base,
		Url:        url,
		ObjectName: objectName,
		Size:       size,
		MimeType:   contentType,
	}, nil
}
