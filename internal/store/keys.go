package store

// Key layout. A primary record lives at "<prefix><id>"; each secondary
// index entry lives at "<prefix>idx:<name>:<value>" and holds the
// record id. Keeping index entries under the entity prefix lets one
// iterator sweep a whole entity, with isIndexKey telling the two kinds
// apart.

const indexMarker = "idx:"

func recordKey(prefix, id string) []byte {
	return []byte(prefix + id)
}

func indexEntryKey(prefix, name, value string) []byte {
	return []byte(prefix + indexMarker + name + ":" + value)
}
