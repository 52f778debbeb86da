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

package gcs

import (
	"sync"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

var (
	cmdlineOptions struct {
		bucket          string
		prefix          string
		credentialsFile string
		endpoint        string
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "gcs",
			Description:        "Google Cloud Storage snapshot archive",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "bucket",
					Type:         plugin.PluginOptionTypeString,
					Description:  "bucket name (required)",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.bucket),
				},
				{
					Name:         "prefix",
					Type:         plugin.PluginOptionTypeString,
					Description:  "object name prefix for the snapshots",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.prefix),
				},
				{
					Name:         "credentials-file",
					Type:         plugin.PluginOptionTypeString,
					Description:  "service account key file, empty for application default credentials",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.credentialsFile),
					CustomEnvVar: "GOOGLE_APPLICATION_CREDENTIALS",
				},
				{
					Name:         "endpoint",
					Type:         plugin.PluginOptionTypeString,
					Description:  "storage emulator endpoint",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.endpoint),
					CustomEnvVar: "STORAGE_EMULATOR_HOST",
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	defer cmdlineOptionsMutex.RUnlock()
	return NewWithOptions(
		WithBucket(cmdlineOptions.bucket),
		WithPrefix(cmdlineOptions.prefix),
		WithCredentialsFile(cmdlineOptions.credentialsFile),
		WithEndpoint(cmdlineOptions.endpoint),
	)
}
