// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListAllPlugins(t *testing.T) {
	out := listAllPlugins()
	assert.Contains(t, out, "blob storage plugins:")
	assert.Contains(t, out, "metadata storage plugins:")
	for _, name := range []string{"badger", "s3", "gcs", "sqlite", "mysql", "postgres"} {
		assert.Contains(t, out, "  "+name+": ")
	}
}
