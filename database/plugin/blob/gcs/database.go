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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const startupTimeout = 30 * time.Second

// BlobStoreGCS archives snapshots in a Google Cloud Storage bucket.
type BlobStoreGCS struct {
	promRegistry    prometheus.Registerer
	logger          *GcsLogger
	client          *storage.Client
	bucket          *storage.BucketHandle
	metrics         *blob.Metrics
	bucketName      string
	prefix          string
	credentialsFile string
	endpoint        string
}

// New creates a new GCS-backed blob store from a dataDir of the form
// "gcs://bucket[/prefix]".
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	path, _ := strings.CutPrefix(dataDir, "gcs://")
	bucketName, keyPrefix, _ := strings.Cut(path, "/")
	if path == dataDir || bucketName == "" {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>[/prefix]')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	), nil
}

// NewWithOptions creates a new GCS-backed blob store using options. The
// client is created by Start.
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) *BlobStoreGCS {
	d := &BlobStoreGCS{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = NewGcsLogger(nil)
	}
	return d
}

func (d *BlobStoreGCS) SetLogger(logger *slog.Logger) {
	d.logger = NewGcsLogger(logger)
}

func (d *BlobStoreGCS) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// Close closes the GCS client.
func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.bucket = nil
	return err
}

// Client returns the GCS client.
func (d *BlobStoreGCS) Client() *storage.Client {
	return d.client
}

// Bucket returns the bucket handle.
func (d *BlobStoreGCS) Bucket() *storage.BucketHandle {
	return d.bucket
}

// Start implements the plugin.Plugin interface.
func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := ValidateCredentials(d.credentialsFile); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	var client *storage.Client
	var err error
	if d.endpoint != "" {
		client, err = storage.NewClient(
			ctx,
			option.WithEndpoint(d.endpoint),
			option.WithoutAuthentication(),
		)
	} else {
		clientOpts := []option.ClientOption{
			storage.WithDisabledClientMetrics(),
		}
		if d.credentialsFile != "" {
			clientOpts = append(
				clientOpts,
				option.WithCredentialsFile(d.credentialsFile),
			)
		}
		client, err = storage.NewGRPCClient(ctx, clientOpts...)
	}
	if err != nil {
		return fmt.Errorf(
			"gcs blob: failed in creating storage client: %w",
			err,
		)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.metrics = blob.NewMetrics(d.promRegistry, "gcs")
	return nil
}

// Stop implements the plugin.Plugin interface.
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

func (d *BlobStoreGCS) fullKey(key string) string {
	return d.prefix + key
}

func (d *BlobStoreGCS) Get(ctx context.Context, key string) ([]byte, error) {
	if d.bucket == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	r, err := d.bucket.Object(d.fullKey(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, types.ErrBlobKeyNotFound
		}
		d.logger.objectFailed("get", key, err)
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		d.logger.objectFailed("read", key, err)
		return nil, err
	}
	d.metrics.Observe("get", len(data))
	return data, nil
}

func (d *BlobStoreGCS) Put(ctx context.Context, key string, value []byte) error {
	if d.bucket == nil {
		return types.ErrBlobStoreUnavailable
	}
	w := d.bucket.Object(d.fullKey(key)).NewWriter(ctx)
	w.ContentType = contentType(key)
	if _, err := w.Write(value); err != nil {
		_ = w.Close()
		d.logger.objectFailed("write", key, err)
		return err
	}
	if err := w.Close(); err != nil {
		d.logger.objectFailed("close", key, err)
		return err
	}
	d.metrics.Observe("put", len(value))
	d.logger.objectWritten(key, w.ContentType, len(value))
	return nil
}

func (d *BlobStoreGCS) List(ctx context.Context, prefix string) ([]string, error) {
	if d.bucket == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	it := d.bucket.Objects(ctx, &storage.Query{Prefix: d.fullKey(prefix)})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			d.logger.objectFailed("list", prefix, err)
			return nil, err
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, d.prefix))
	}
	sort.Strings(keys)
	d.metrics.Observe("list", 0)
	return keys, nil
}
