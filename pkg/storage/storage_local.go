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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps objects on the local filesystem under BasePath. The router
// serves that directory under PublicURL.
type LocalStorage struct {
	root string
	s    *Storage
}

func newLocal(s *Storage) (*LocalStorage, error) {
	root := s.LocalRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{root: root, s: s}, nil
}

func (l *LocalStorage) Root() string {
	return l.root
}

func (l *LocalStorage) path(objectName string) string {
	return filepath.Join(l.root, filepath.FromSlash(getFullPath("", objectName)))
}

func (l *LocalStorage) PutObject(_ context.Context, objectName string, r io.Reader, _ int64, _ string) (string, error) {
	dst := l.path(objectName)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return getFullPath("", objectName), nil
}

func (l *LocalStorage) GetObject(_ context.Context, objectName string) (io.ReadCloser, error) {
	return os.Open(l.path(objectName))
}

func (l *LocalStorage) Delete(_ context.Context, objectName string) error {
	err := os.Remove(l.path(objectName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *LocalStorage) URL(_ context.Context, objectName string) (string, error) {
	return l.s.PublicPrefix() + "/" + getFullPath("", objectName), nil
}
