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

package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	StorageMinio = "minio"
	StorageS3    = "s3"
	StorageLocal = "local"
)

type Storage struct {
	Provider  string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	Region    string
	UseTLS    bool
	BasePath  string
	// PublicURL is the prefix the local provider serves files under.
	PublicURL string
	// PresignExpire is in minutes.
	PresignExpire int
	// MaxFileSize is in MB.
	MaxFileSize int
}

func (s *Storage) presignExpire() time.Duration {
	if s.PresignExpire <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.PresignExpire) * time.Minute
}

// MaxBytes is the upload size limit, 0 when unlimited.
func (s *Storage) MaxBytes() int64 {
	if s.MaxFileSize <= 0 {
		return 0
	}
	return int64(s.MaxFileSize) * 1024 * 1024
}

// LocalRoot is the directory the local provider writes to.
func (s *Storage) LocalRoot() string {
	if s.BasePath == "" {
		return "data/uploads"
	}
	return s.BasePath
}

// PublicPrefix is the URL prefix local files are served under.
func (s *Storage) PublicPrefix() string {
	prefix := strings.TrimRight(s.PublicURL, "/")
	if prefix == "" {
		return "/files"
	}
	return prefix
}

// IsLocal reports whether objects live on the local filesystem.
func (s *Storage) IsLocal() bool {
	return s.Provider == StorageLocal || s.Provider == ""
}

func NewStorage(s *Storage) (StorageProvider, error) {
	switch s.Provider {
	case StorageMinio:
		return newMinio(s)
	case StorageS3:
		return newS3(s)
	case StorageLocal, "":
		return newLocal(s)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", s.Provider)
	}
}

func getFullPath(basePath, objectName string) string {
	objectName = strings.TrimLeft(path.Clean("/"+objectName), "/")
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return objectName
	}
	return basePath + "/" + objectName
}
