package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lionscraft/docpythia/pkg/docindex"
	"github.com/lionscraft/docpythia/pkg/services"
)

// docIndexFilter is the compact-rendering configuration applied to every
// tenant's doc index; operators don't yet get a per-tenant knob for
// this, so it is a single ambient default tuned for prompt budget.
var docIndexFilter = docindex.FilterConfig{
	MaxSummaryLength:        400,
	CompactIncludeSummaries: true,
	CompactIncludeSections:  true,
	MaxSectionsInCompact:    5,
}

// resolveDocIndex returns a tenant's current doc-tree index, rebuilding
// and caching it only when the underlying markdown content has changed
// since the last build — the same content_hash gate the Doc-Index
// Generator (C4) implements in pkg/docindex/cache.go.
func (o *Orchestrator) resolveDocIndex(ctx context.Context, tenantID, root string) (docindex.Index, error) {
	if root == "" {
		return docindex.Index{}, nil
	}

	digests, err := hashDocTree(root)
	if err != nil {
		return docindex.Index{}, fmt.Errorf("pipeline: failed to hash doc tree: %w", err)
	}
	contentHash := docindex.ContentHash(digests)

	cached, err := o.docIndexes.Get(ctx, tenantID)
	if err == nil && cached.ContentHash == contentHash {
		return decodeIndex(cached.IndexJSON)
	}
	if err != nil && err != services.ErrNotFound {
		return docindex.Index{}, fmt.Errorf("pipeline: failed to read doc index cache: %w", err)
	}

	idx, err := docindex.Generate(root, docIndexFilter)
	if err != nil {
		return docindex.Index{}, fmt.Errorf("pipeline: failed to generate doc index: %w", err)
	}

	encoded, err := encodeIndex(idx)
	if err != nil {
		return docindex.Index{}, fmt.Errorf("pipeline: failed to encode doc index: %w", err)
	}
	if err := o.docIndexes.Upsert(ctx, tenantID, contentHash, encoded); err != nil {
		return docindex.Index{}, fmt.Errorf("pipeline: failed to cache doc index: %w", err)
	}

	return idx, nil
}

// hashDocTree digests every markdown file under root, the superset of
// files any FilterConfig could select, so a content change never goes
// undetected just because the active filter happens to exclude it.
func hashDocTree(root string) (map[string][]byte, error) {
	digests := make(map[string][]byte)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		sum := sha256.Sum256(data)
		digests[filepath.ToSlash(rel)] = sum[:]
		return nil
	})
	return digests, err
}

func encodeIndex(idx docindex.Index) ([]map[string]interface{}, error) {
	data, err := json.Marshal(idx.Pages)
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeIndex(raw []map[string]interface{}) (docindex.Index, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return docindex.Index{}, err
	}
	var pages []docindex.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return docindex.Index{}, err
	}
	return docindex.Index{Pages: pages}, nil
}
