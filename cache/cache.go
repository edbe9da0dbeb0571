// Package cache implements the process-wide TokenizedDocumentCache: a
// (URI, content hash) keyed memoization of tokenization + parse, so a
// language server driving repeated "diagnostics for context C" requests
// does not re-lex/re-parse an unchanged file. It is modeled as an
// explicit service object passed into callers rather than an ambient
// singleton, per §10 of the module's own spec ("process-wide cache").
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	gocontext "context"
	"sync"

	"github.com/golangee/dts/parser"
	"github.com/sirupsen/logrus"
)

type entry struct {
	contentHash string
	parse       *parser.Result
}

// DocumentCache memoizes parses keyed by URI. Writers compute a fresh
// parse off-lock and publish it under a write-lock; the published
// *parser.Result is never mutated afterwards, so handing the same
// pointer to multiple readers is safe (§6 of the module's own spec).
type DocumentCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	log     logrus.FieldLogger
}

// New creates an empty cache. A nil logger defaults to
// logrus.StandardLogger(), matching how the CLI wires the rest of the
// module's logging.
func New(log logrus.FieldLogger) *DocumentCache {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &DocumentCache{
		entries: make(map[string]*entry),
		log:     log,
	}
}

func hashOf(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetOrCreate returns the cached parse for uri if its content hash
// matches text, otherwise tokenizes and parses text fresh and publishes
// the result under uri before returning it.
func (c *DocumentCache) GetOrCreate(ctx gocontext.Context, uri, text string) *parser.Result {
	hash := hashOf(text)

	c.mu.RLock()
	e, ok := c.entries[uri]
	c.mu.RUnlock()

	if ok && e.contentHash == hash {
		c.log.WithField("uri", uri).Debug("document cache hit")
		return e.parse
	}

	c.log.WithField("uri", uri).Debug("document cache miss, parsing")

	res := parser.NewParser(uri, text).Parse(ctx)

	c.mu.Lock()
	c.entries[uri] = &entry{contentHash: hash, parse: res}
	c.mu.Unlock()

	return res
}

// Reset clears every cached entry. Safe only between top-level
// operations, matching the module's own §6 concurrency note — callers
// must not hold outstanding readers across Reset.
func (c *DocumentCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.log.Debug("document cache reset")
}

// Len reports the number of cached documents, used by tests to assert
// hit/miss behavior without reaching into internals.
func (c *DocumentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
