// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// ErrConfiguration matches errors caused by invalid options.
	ErrConfiguration = errors.ConstError("configuration error")
	// ErrSchema matches errors caused by input missing identifier columns.
	ErrSchema = errors.ConstError("schema error")
	// ErrReferential matches errors caused by ids absent from their mapping.
	ErrReferential = errors.ConstError("referential error")
)

// ConfigurationError reports an option out of range, e.g. too many held-out users.
type ConfigurationError struct {
	Option  string
	Message string
}

func ConfigurationErrorf(option, format string, args ...any) error {
	return errors.Trace(&ConfigurationError{Option: option, Message: fmt.Sprintf(format, args...)})
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Option, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// SchemaError reports a source that does not provide a required column.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s has no column `%s`", ErrSchema, e.Source, e.Column)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ReferentialError reports a feedback whose user or item is not indexed.
type ReferentialError struct {
	Kind string
	Id   string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: %s `%s` is not indexed", ErrReferential, e.Kind, e.Id)
}

func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}
