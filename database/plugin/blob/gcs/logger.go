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
)

// GcsLogger logs object operations with the store attributes attached
type GcsLogger struct {
	logger *slog.Logger
}

func NewGcsLogger(logger *slog.Logger) *GcsLogger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GcsLogger{
		logger: logger.With("component", "database", "store", "gcs"),
	}
}

func (g *GcsLogger) objectFailed(op, key string, err error) {
	g.logger.Error("gcs "+op+" failed", "key", key, "error", err)
}

func (g *GcsLogger) objectWritten(key, contentType string, size int) {
	g.logger.Info(
		"gcs put",
		"key", key,
		"content_type", contentType,
		"bytes", size,
	)
}
