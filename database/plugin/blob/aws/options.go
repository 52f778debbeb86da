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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type BlobStoreS3OptionFunc func(*BlobStoreS3)

func WithLogger(logger *slog.Logger) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.logger = NewS3Logger(logger)
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.promRegistry = registry
	}
}

func WithBucket(bucket string) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.bucket = bucket
	}
}

// WithRegion overrides the region from the shared AWS config
func WithRegion(region string) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.region = region
	}
}

// WithPrefix places every snapshot key under prefix
func WithPrefix(prefix string) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.prefix = normalizePrefix(prefix)
	}
}

// WithTimeout bounds each S3 call
func WithTimeout(timeout time.Duration) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.timeout = timeout
	}
}

// WithRetryMax sets the SDK max attempts per call. Zero keeps the SDK
// default.
func WithRetryMax(attempts int) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.retryMax = attempts
	}
}

// WithEndpoint points the client at an S3 compatible service such as
// minio, using path style addressing
func WithEndpoint(endpoint string) BlobStoreS3OptionFunc {
	return func(b *BlobStoreS3) {
		b.endpoint = endpoint
	}
}
