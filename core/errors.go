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

import "errors"

var (
	// ErrInvalidSidecar indicates a Sidecar failed validation.
	ErrInvalidSidecar = errors.New("invalid sidecar")

	// ErrInvalidIndexObject indicates an IndexObject failed validation.
	ErrInvalidIndexObject = errors.New("invalid index object")

	// ErrMissingID indicates the identifier is empty.
	ErrMissingID = errors.New("id cannot be empty")

	// ErrMissingClass indicates the collection class name is empty.
	ErrMissingClass = errors.New("class name cannot be empty")

	// ErrEmptyVector indicates an index object carries no vector.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
