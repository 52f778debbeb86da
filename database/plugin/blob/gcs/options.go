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
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

type BlobStoreGCSOptionFunc func(*BlobStoreGCS)

func WithLogger(logger *slog.Logger) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.logger = NewGcsLogger(logger)
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.promRegistry = registry
	}
}

func WithBucket(bucket string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.bucketName = bucket
	}
}

// WithPrefix places every snapshot object under prefix
func WithPrefix(prefix string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" {
			prefix += "/"
		}
		b.prefix = prefix
	}
}

// WithCredentialsFile uses a service account key file instead of the
// application default credentials
func WithCredentialsFile(path string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.credentialsFile = path
	}
}

// WithEndpoint talks to a storage emulator over the JSON API without
// authentication
func WithEndpoint(endpoint string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.endpoint = endpoint
	}
}
