package storage

import (
	"fmt"

	"github.com/poiesic/docvault/core"
)

// MarshalIndexObject serializes an IndexObject to bytes.
func MarshalIndexObject(obj *core.IndexObject) []byte {
	buf := make([]byte, core.IndexObjectMUS.Size(*obj))
	core.IndexObjectMUS.Marshal(*obj, buf)
	return buf
}

// UnmarshalIndexObject deserializes an IndexObject from bytes.
func UnmarshalIndexObject(data []byte) (*core.IndexObject, error) {
	obj, _, err := core.IndexObjectMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &obj, nil
}

// MarshalCollection serializes a Collection to bytes.
func MarshalCollection(c *core.Collection) []byte {
	buf := make([]byte, core.CollectionMUS.Size(*c))
	core.CollectionMUS.Marshal(*c, buf)
	return buf
}

// UnmarshalCollection deserializes a Collection from bytes.
func UnmarshalCollection(data []byte) (*core.Collection, error) {
	c, _, err := core.CollectionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &c, nil
}

// MarshalWatermarkEntry serializes a WatermarkEntry to bytes.
func MarshalWatermarkEntry(e core.WatermarkEntry) []byte {
	buf := make([]byte, core.WatermarkEntryMUS.Size(e))
	core.WatermarkEntryMUS.Marshal(e, buf)
	return buf
}

// UnmarshalWatermarkEntry deserializes a WatermarkEntry from bytes.
func UnmarshalWatermarkEntry(data []byte) (core.WatermarkEntry, error) {
	e, _, err := core.WatermarkEntryMUS.Unmarshal(data)
	if err != nil {
		return core.WatermarkEntry{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return e, nil
}
