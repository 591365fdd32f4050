// Copyright 2025 Poiesic Systems
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


package core

import "fmt"

// ValidateSidecar validates a Sidecar loaded from disk.
//
// Validation rules:
//   - ArchivedPath or ID must be present so the record can be keyed
//
// Text is NOT validated: an empty text is a legitimate extraction outcome.
func ValidateSidecar(s *Sidecar) error {
	if s == nil {
		return fmt.Errorf("%w: sidecar is nil", ErrInvalidSidecar)
	}
	if s.ID == "" && s.ArchivedPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSidecar, ErrMissingID)
	}
	return nil
}

// ValidateIndexObject validates an IndexObject before it is upserted.
func ValidateIndexObject(obj *IndexObject) error {
	if obj == nil {
		return fmt.Errorf("%w: object is nil", ErrInvalidIndexObject)
	}
	if obj.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexObject, ErrMissingID)
	}
	if obj.Class == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexObject, ErrMissingClass)
	}
	if len(obj.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIndexObject, ErrEmptyVector)
	}
	return nil
}
