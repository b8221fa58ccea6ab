package driver

import (
	"bytes"
	"fmt"
	"os"

	"deoptlens/internal/cache"
	"deoptlens/internal/entry"
)

// LoadEntries decodes the entries file at path. With a non-nil cache the
// decoded document is looked up by content hash first and stored after a
// miss; cache failures never fail the load. hit reports whether the cache
// served the document.
func LoadEntries(path string, c *cache.Disk) (doc *entry.Document, hit bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read entries: %w", err)
	}
	key := cache.Sum(raw)

	var payload cache.Payload
	if ok, err := c.Get(key, &payload); err == nil && ok {
		doc := payload.Document
		return &doc, true, nil
	}
	// a corrupt cache file is rewritten below

	doc, err = entry.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	_ = c.Put(key, cache.NewPayload(path, doc)) // best effort
	return doc, false, nil
}
