package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/cognoscan/condensedb/cobj"
)

// blobCache is the content-addressed byte buffer store backing documents
// and entries: keyed by hash, holding the wire encoding produced by
// Document.Encode/Entry.Encode, grounded on the teacher's huge-cache
// package (huge-cache/cache.go), which wraps the same library around CID
// keys for raw CAR object bytes.
type blobCache struct {
	docs    *bigcache.BigCache
	entries *bigcache.BigCache
}

func newBlobCache(ctx context.Context) (*blobCache, error) {
	cfg := bigcache.DefaultConfig(10 * time.Minute)
	cfg.HardMaxCacheSize = 0 // unbounded; TTL eviction only

	docs, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	entries, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &blobCache{docs: docs, entries: entries}, nil
}

func docKey(h cobj.Hash) string { return hex.EncodeToString(h.Digest[:]) }

func entryKey(doc, entry cobj.Hash) string {
	return hex.EncodeToString(doc.Digest[:]) + ":" + hex.EncodeToString(entry.Digest[:])
}

func (c *blobCache) putDoc(h cobj.Hash, raw []byte) error {
	return c.docs.Set(docKey(h), raw)
}

func (c *blobCache) getDoc(h cobj.Hash) ([]byte, bool) {
	v, err := c.docs.Get(docKey(h))
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			log.Warnw("blob cache doc read failed", "err", err)
		}
		return nil, false
	}
	return v, true
}

func (c *blobCache) delDoc(h cobj.Hash) { _ = c.docs.Delete(docKey(h)) }

func (c *blobCache) putEntry(doc, entry cobj.Hash, raw []byte) error {
	return c.entries.Set(entryKey(doc, entry), raw)
}

func (c *blobCache) getEntry(doc, entry cobj.Hash) ([]byte, bool) {
	v, err := c.entries.Get(entryKey(doc, entry))
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			log.Warnw("blob cache entry read failed", "err", err)
		}
		return nil, false
	}
	return v, true
}

func (c *blobCache) delEntry(doc, entry cobj.Hash) { _ = c.entries.Delete(entryKey(doc, entry)) }
