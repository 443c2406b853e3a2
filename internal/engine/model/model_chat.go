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

package model

import (
	"time"

	"github.com/bytedance/sonic"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionChatMessage = "chat_messages"

type MessageKind string

const (
	MessageText MessageKind = "text"
	MessageFile MessageKind = "file"
	MessageCode MessageKind = "code"
)

// FileRef is the descriptor returned by an upload and echoed back in a file message.
type FileRef struct {
	Name       string `bson:"name" json:"name"`
	Url        string `bson:"url" json:"url"`
	ObjectName string `bson:"objectName" json:"objectName"`
	Size       int64  `bson:"size" json:"size"`
	MimeType   string `bson:"mimeType" json:"mimeType"`
}

type CodeSnippet struct {
	Language string `bson:"language" json:"language"`
	Snippet  string `bson:"snippet" json:"snippet"`
}

type ChatMessage struct {
	BaseModel `bson:",inline"`
	Project   primitive.ObjectID `bson:"project" json:"project"`
	Task      primitive.ObjectID `bson:"task,omitempty" json:"task,omitempty"`
	ChatRoom  string             `bson:"chatRoom,omitempty" json:"chatRoom,omitempty"`
	Sender    primitive.ObjectID `bson:"sender" json:"senderId"`
	Kind      MessageKind        `bson:"kind" json:"kind"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	File      *FileRef           `bson:"file,omitempty" json:"file,omitempty"`
	Code      *CodeSnippet       `bson:"code,omitempty" json:"code,omitempty"`
	Edited    bool               `bson:"edited" json:"edited"`
	EditedAt  *time.Time         `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	Active    bool               `bson:"active" json:"active"`

	// Author is joined at read time.
	Author *UserSummary `bson:"-" json:"sender,omitempty"`
}

// MarshalJSON leaves out the task of project-level messages.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type message ChatMessage
	return sonic.Marshal(struct {
		message
		Task *primitive.ObjectID `json:"task,omitempty"`
	}{message(m), OptionalID(m.Task)})
}

// SendMessageReq is the payload of a send-message event.
type SendMessageReq struct {
	ProjectId string       `json:"projectId"`
	ChatRoom  string       `json:"chatRoom,omitempty"`
	TaskId    string       `json:"taskId,omitempty"`
	Content   string       `json:"content,omitempty"`
	File      *FileRef     `json:"file,omitempty"`
	Code      *CodeSnippet `json:"code,omitempty"`
}

type EditMessageReq struct {
	Content *string      `json:"content"`
	Code    *CodeSnippet `json:"code"`
}

// MessageRemoved is the payload of a message-deleted event.
type MessageRemoved struct {
	ID      primitive.ObjectID  `json:"id"`
	Project primitive.ObjectID  `json:"project"`
	Task    *primitive.ObjectID `json:"task,omitempty"`
}
