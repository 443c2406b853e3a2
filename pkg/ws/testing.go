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

package ws

import (
	"context"
	"sync"
)

// FakeConn is an in-memory Conn for tests of hubs and handlers.
type FakeConn struct {
	Id     string
	Buffer int
	Values map[string]any

	mu        sync.Mutex
	frames    [][]byte
	closeOnce sync.Once
	closed    chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewFakeConn(id string, buffer int) *FakeConn {
	ctx, cancel := context.WithCancel(context.Background())
	return &FakeConn{Id: id, Buffer: buffer, Values: map[string]any{}, closed: make(chan struct{}), ctx: ctx, cancel: cancel}
}

func (f *FakeConn) ID() string { return f.Id }

func (f *FakeConn) Send(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.closed:
		return false
	default:
	}
	if f.Buffer > 0 && len(f.frames) >= f.Buffer {
		return false
	}
	f.frames = append(f.frames, data)
	return true
}

// Frames returns and clears everything sent so far.
func (f *FakeConn) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.frames
	f.frames = nil
	return out
}

func (f *FakeConn) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		f.cancel()
	})
	return nil
}

func (f *FakeConn) Closed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *FakeConn) Done() <-chan struct{} { return f.closed }

func (f *FakeConn) RemoteAddr() string { return "pipe" }

func (f *FakeConn) Locals(key string) any { return f.Values[key] }

func (f *FakeConn) Context() context.Context { return f.ctx }
