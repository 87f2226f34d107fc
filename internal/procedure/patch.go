package procedure

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// includeKey composes the Store cache key for one Include site: bare
// path when it carries no placeholder patch, else path plus a short
// digest of the patch document so two Include sites naming the same
// file with different patches resolve to distinct cache entries and
// two naming it with the *same* patch share one parsed+patched Doc.
func includeKey(path, patch string) string {
	if patch == "" {
		return path
	}
	sum := sha256.Sum256([]byte(patch))
	return path + "#" + hex.EncodeToString(sum[:8])
}

// applyPlaceholderPatch decodes patchJSON as an RFC 6902 JSON Patch
// document and applies it to raw, implementing spec.md §6's "`$`
// indicates include-time placeholder substitution": a parent Include
// instruction overrides nested attribute values of the included file
// without that file knowing about its caller, by patching its raw
// JSON tree before it is decoded into a Doc. An empty patchJSON is a
// no-op.
func applyPlaceholderPatch(raw []byte, patchJSON string) ([]byte, error) {
	if patchJSON == "" {
		return raw, nil
	}
	patch, err := jsonpatch.DecodePatch([]byte(patchJSON))
	if err != nil {
		return nil, fmt.Errorf("procedure: decode placeholder patch: %w", err)
	}
	patched, err := patch.Apply(raw)
	if err != nil {
		return nil, fmt.Errorf("procedure: apply placeholder patch: %w", err)
	}
	return patched, nil
}
