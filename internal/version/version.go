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

package version

import (
	"fmt"
	"runtime/debug"
)

// These are populated at build time
var (
	Version    string
	CommitHash string
)

// GetVersionString returns the release version, or "devel" with the VCS
// revision recorded by the Go toolchain when no version was injected
func GetVersionString() string {
	commit := CommitHash
	if commit == "" {
		commit = vcsRevision()
	}
	if Version != "" {
		return fmt.Sprintf("%s (commit %s)", Version, commit)
	}
	return fmt.Sprintf("devel (commit %s)", commit)
}

// UserAgent is sent with every Members API request
func UserAgent() string {
	if Version != "" {
		return "parlmembers/" + Version
	}
	return "parlmembers/devel"
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
