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
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/smithy-go/logging"
)

// S3Logger logs object operations and receives SDK log output as a
// smithy-go logging.Logger
type S3Logger struct {
	logger *slog.Logger
}

func NewS3Logger(logger *slog.Logger) *S3Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &S3Logger{
		logger: logger.With("component", "database", "store", "s3"),
	}
}

// Logf implements logging.Logger
func (l *S3Logger) Logf(classification logging.Classification, format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	if classification == logging.Warn {
		l.logger.Warn(msg)
		return
	}
	l.logger.Debug(msg)
}

func (l *S3Logger) objectFailed(op, key string, err error) {
	l.logger.Error(
		"s3 "+op+" failed",
		"key", key,
		"error", err,
	)
}

func (l *S3Logger) objectDone(ctx context.Context, op, key string, size int) {
	level := slog.LevelDebug
	if op == "put" {
		level = slog.LevelInfo
	}
	l.logger.Log(
		ctx,
		level,
		"s3 "+op,
		"key", key,
		"bytes", size,
	)
}
