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
	"strings"

	"github.com/gofiber/fiber/v2"
)

// storageRouter serves uploaded files when they are kept on local disk. Remote
// providers hand out their own URLs.
func (rt *Router) storageRouter(app *fiber.App) {
	if rt.Storage == nil || !rt.Storage.IsLocal() {
		return
	}
	prefix := rt.Storage.PublicPrefix()
	if !strings.HasPrefix(prefix, "/") {
		return
	}
	app.Static(prefix, rt.Storage.LocalRoot(), fiber.Static{
		Browse:   false,
		Download: true,
	})
}
