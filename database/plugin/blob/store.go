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

package blob

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStore is a flat key/value archive. Keys are slash separated paths.
type BlobStore interface {
	Close() error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// List returns the keys starting with prefix in ascending order
	List(ctx context.Context, prefix string) ([]string, error)
}

// New returns the started blob plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	p, err := plugin.StartPlugin(
		plugin.PluginTypeBlob,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}
	blobStore, ok := p.(BlobStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}
	return blobStore, nil
}
