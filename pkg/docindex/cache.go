package docindex

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// ConfigHash canonicalises a FilterConfig to JSON and hashes it, giving
// the same value across process restarts. The DocIndexCache rebuild gate
// does not use it; only ContentHash decides when an index is rebuilt.
func ConfigHash(cfg FilterConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("docindex: failed to canonicalize filter config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ContentHash hashes a documentation tree's file paths and contents,
// gating DocIndexCache rebuilds — distinct from ConfigHash, which only
// changes when the filter configuration itself changes.
func ContentHash(fileDigests map[string][]byte) string {
	paths := make([]string, 0, len(fileDigests))
	for path := range fileDigests {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, path := range paths {
		h.Write([]byte(path))
		h.Write(fileDigests[path])
	}
	return hex.EncodeToString(h.Sum(nil))
}
