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

package extract

import (
	"errors"
	"fmt"
)

var ErrInvalidHouse = errors.New("house must be 1 (Commons) or 2 (Lords)")

// ValidationError reports an upstream record that is missing a required
// identifying field or carries a value outside its domain
type ValidationError struct {
	Err    error
	Entity string
	Field  string
	ID     int
}

func (e *ValidationError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("invalid %s %d: %s: %s", e.Entity, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Entity, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(entity string, id int, field string, err error) error {
	return &ValidationError{
		Entity: entity,
		ID:     id,
		Field:  field,
		Err:    err,
	}
}
