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
	"errors"
	"fmt"
	"os"
)

// ValidateCredentials checks that an explicitly configured service account
// file exists. An empty path defers to application default credentials.
func ValidateCredentials(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("GCS credentials file does not exist: %s", path)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("GCS credentials file is a directory: %s", path)
	}
	return nil
}
