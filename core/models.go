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

//go:generate go run ../cmd/musgen

import "time"

// ItemTypeUnknown is assigned to inbox files dropped directly at the inbox root.
const ItemTypeUnknown = "unknown"

// ItemTypeActive tags objects synced from the live document tree.
const ItemTypeActive = "active"

// Sidecar is the canonical record of one archived document. It is written
// beside the archived original and copied into the staging queue.
type Sidecar struct {
	ID               string         `json:"id"`
	SourcePath       string         `json:"source_path"`
	ArchivedPath     string         `json:"archived_path"`
	ItemType         string         `json:"item_type"`
	OriginalFilename string         `json:"original_filename"`
	Checksum         string         `json:"checksum"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Text             string         `json:"text"`
	Metadata         map[string]any `json:"metadata"`
}

// Index object property names. These are also the required collection fields.
const (
	PropText         = "text"
	PropItemType     = "item_type"
	PropSourcePath   = "source_path"
	PropArchivedPath = "archived_path"
	PropChecksum     = "checksum"
	PropCreatedAt    = "created_at"
	PropUpdatedAt    = "updated_at"
)

// DataTypeText is the only property data type the pipeline declares.
const DataTypeText = "text"

// VectorizerNone marks a collection whose vectors are always supplied by the caller.
const VectorizerNone = "none"

// IndexObject is one entry of the vector index, keyed by ID within a class.
type IndexObject struct {
	ID         string
	Class      string
	Properties map[string]string
	Vector     []float32
}

// Property is a single named field of a collection schema.
type Property struct {
	Name     string
	DataType string
}

// Collection describes the schema of a vector index class.
type Collection struct {
	Class      string
	Vectorizer string
	Properties []Property
}

// HasProperty reports whether the collection declares a field with the given name.
func (c *Collection) HasProperty(name string) bool {
	for _, p := range c.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

// RequiredProperties returns the field set every document collection must carry.
func RequiredProperties() []Property {
	names := []string{
		PropText,
		PropItemType,
		PropSourcePath,
		PropArchivedPath,
		PropChecksum,
		PropCreatedAt,
		PropUpdatedAt,
	}
	props := make([]Property, len(names))
	for i, n := range names {
		props[i] = Property{Name: n, DataType: DataTypeText}
	}
	return props
}

// SearchHit is a nearest-neighbour result.
type SearchHit struct {
	Object   *IndexObject
	Score    float32
	Distance float32
}

// WatermarkEntry is a single persisted high-water mark of the active re-scanner.
type WatermarkEntry struct {
	Path        string
	ModTimeNano int64
}

// timestampLayout is ISO-8601 UTC with microsecond precision.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp formats t as an ISO-8601 UTC string.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a string produced by Timestamp. RFC 3339 input is also accepted.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
