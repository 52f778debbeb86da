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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultTimeout = 60 * time.Second

// BlobStoreS3 archives snapshots in an AWS S3 bucket
type BlobStoreS3 struct {
	promRegistry prometheus.Registerer
	logger       *S3Logger
	client       *s3.Client
	metrics      *blob.Metrics
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
	retryMax     int
}

// New creates a new S3-backed blob store and dataDir must be "s3://bucket" or "s3://bucket/prefix"
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	bucket, keyPrefix, err := parseDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	), nil
}

func parseDataDir(dataDir string) (string, string, error) {
	path, ok := strings.CutPrefix(dataDir, "s3://")
	if !ok {
		return "", "", errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return "", "", errors.New("s3 blob: bucket not set")
	}
	return bucket, normalizePrefix(keyPrefix), nil
}

// normalizePrefix ensures a non-empty prefix ends with a single slash
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// NewWithOptions creates a new S3-backed blob store using options. The
// client is created by Start.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) *BlobStoreS3 {
	d := &BlobStoreS3{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = NewS3Logger(nil)
	}
	return d
}

func (d *BlobStoreS3) SetLogger(logger *slog.Logger) {
	d.logger = NewS3Logger(logger)
}

func (d *BlobStoreS3) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// Start implements the plugin.Plugin interface.
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	ctx, cancel := d.opContext(context.Background())
	defer cancel()
	loadOpts := []func(*config.LoadOptions) error{
		config.WithLogger(d.logger),
		config.WithClientLogMode(aws.LogRetries),
	}
	if d.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(d.region))
	}
	if d.retryMax > 0 {
		loadOpts = append(loadOpts, config.WithRetryMaxAttempts(d.retryMax))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint == "" {
			return
		}
		// S3 compatible services such as minio
		o.BaseEndpoint = aws.String(d.endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	d.metrics = blob.NewMetrics(d.promRegistry, "s3")
	return nil
}

// Stop implements the plugin.Plugin interface.
func (d *BlobStoreS3) Stop() error {
	return nil
}

// Close implements the BlobStore interface. The S3 client holds no
// resources that need releasing.
func (d *BlobStoreS3) Close() error {
	return d.Stop()
}

func (d *BlobStoreS3) opContext(
	parent context.Context,
) (context.Context, context.CancelFunc) {
	timeout := d.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// Client returns the S3 client
func (d *BlobStoreS3) Client() *s3.Client {
	return d.client
}

// Bucket returns the bucket name
func (d *BlobStoreS3) Bucket() string {
	return d.bucket
}

// fullKey returns the S3 key with the configured prefix
func (d *BlobStoreS3) fullKey(key string) string {
	return d.prefix + key
}

func (d *BlobStoreS3) Get(ctx context.Context, key string) ([]byte, error) {
	if d.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, types.ErrBlobKeyNotFound
		}
		d.logger.objectFailed("get", key, err)
		return nil, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		d.logger.objectFailed("read", key, err)
		return nil, err
	}
	d.metrics.Observe("get", len(data))
	d.logger.objectDone(ctx, "get", key, len(data))
	return data, nil
}

func (d *BlobStoreS3) Put(ctx context.Context, key string, value []byte) error {
	if d.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		d.logger.objectFailed("put", key, err)
		return err
	}
	d.metrics.Observe("put", len(value))
	d.logger.objectDone(ctx, "put", key, len(value))
	return nil
}

func (d *BlobStoreS3) List(ctx context.Context, prefix string) ([]string, error) {
	if d.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
	}
	if full := d.fullKey(prefix); full != "" {
		input.Prefix = aws.String(full)
	}
	paginator := s3.NewListObjectsV2Paginator(d.client, input)
	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			d.logger.objectFailed("list", prefix, err)
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), d.prefix))
		}
	}
	sort.Strings(keys)
	d.metrics.Observe("list", 0)
	return keys, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
