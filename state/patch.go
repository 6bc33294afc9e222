package state

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/hupe1980/agui/core"
)

// ApplyPatch applies an ordered list of RFC 6902 operations to a raw JSON
// document and returns the patched document. The input document is not
// modified. A nil document is treated as an empty object so deltas can
// arrive before any snapshot.
func ApplyPatch(doc json.RawMessage, ops []core.PatchOp) (json.RawMessage, error) {
	if len(ops) == 0 {
		return core.CloneRawJSON(doc), nil
	}

	if doc == nil {
		doc = json.RawMessage("{}")
	}

	encoded, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state delta: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid state delta: %w", err)
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply state delta: %w", err)
	}

	return patched, nil
}
