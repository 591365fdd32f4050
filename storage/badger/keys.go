package badger

// Key prefixes for different data types
const (
	collectionPrefix  = "colsch"
	objectPrefix      = "idxobj"
	watermarkPrefix   = "wmark"
	keySeparator      = ":"
	watermarkSnapshot = "active"
)

// makeCollectionKey generates a key for a collection schema.
// Format: prefix:class
func makeCollectionKey(class string) []byte {
	return []byte(collectionPrefix + keySeparator + class)
}

// makeObjectKey generates a key for an index object.
// Format: prefix:class:id
func makeObjectKey(class, id string) []byte {
	return []byte(objectPrefix + keySeparator + class + keySeparator + id)
}

// makeObjectClassPrefix generates the iteration prefix covering all objects of a class.
// Format: prefix:class:
func makeObjectClassPrefix(class string) []byte {
	return []byte(objectPrefix + keySeparator + class + keySeparator)
}

// makeWatermarkPrefix generates the prefix covering one watermark snapshot.
// Format: prefix:snapshot:
func makeWatermarkPrefix(snapshot string) []byte {
	return []byte(watermarkPrefix + keySeparator + snapshot + keySeparator)
}

// makeWatermarkKey generates the key of one watermark entry.
// Format: prefix:snapshot:path
func makeWatermarkKey(snapshot, path string) []byte {
	return append(makeWatermarkPrefix(snapshot), path...)
}
