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

package aws

import (
	"sync"
	"time"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

var (
	cmdlineOptions struct {
		endpoint string
		bucket   string
		region   string
		prefix   string
		timeout  int
		retryMax int
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	str := func(name, description string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  description,
			DefaultValue: "",
			Dest:         dest,
		}
	}
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "s3",
			Description:        "AWS S3 snapshot archive",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				str("bucket", "bucket name (required)", &cmdlineOptions.bucket),
				str("prefix", "key prefix for the snapshots", &cmdlineOptions.prefix),
				str("region", "region, defaults to the shared AWS config", &cmdlineOptions.region),
				str("endpoint", "endpoint of an S3 compatible service", &cmdlineOptions.endpoint),
				{
					Name:         "timeout",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "per call timeout in seconds",
					DefaultValue: int(defaultTimeout / time.Second),
					Dest:         &(cmdlineOptions.timeout),
				},
				{
					Name:         "retry-max",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "max attempts per call, 0 for the SDK default",
					DefaultValue: 0,
					Dest:         &(cmdlineOptions.retryMax),
				},
			},
		},
	)
}

// NewFromCmdlineOptions builds the store from the registered options. A
// missing bucket is reported by Start.
func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	defer cmdlineOptionsMutex.RUnlock()
	opts := []BlobStoreS3OptionFunc{
		WithBucket(cmdlineOptions.bucket),
		WithPrefix(cmdlineOptions.prefix),
		WithRegion(cmdlineOptions.region),
		WithEndpoint(cmdlineOptions.endpoint),
		WithRetryMax(cmdlineOptions.retryMax),
	}
	if cmdlineOptions.timeout > 0 {
		opts = append(
			opts,
			WithTimeout(time.Duration(cmdlineOptions.timeout)*time.Second),
		)
	}
	return NewWithOptions(opts...)
}
