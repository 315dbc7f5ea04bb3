package research

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// IsEmptyValue reports whether a JSON value carries no information:
// nil, "", an empty array, or an empty object. Zero numbers and false
// are NOT empty; they are legitimate answers.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// MergeFillMissing fills gaps in existing from patch without ever
// degrading existing data:
//   - a key empty in existing takes the patch value outright
//   - arrays concatenate with duplicates removed
//   - objects merge recursively under the same rules
//   - a scalar already present in existing always wins
//
// The returned map is a new value; neither input is mutated.
func MergeFillMissing(existing, patch map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(patch))
	for k, v := range existing {
		out[k] = v
	}
	for k, pv := range patch {
		if IsEmptyValue(pv) {
			continue
		}
		ev, present := out[k]
		if !present || IsEmptyValue(ev) {
			if patchVal, ok := pv.([]any); ok {
				// Adopted arrays get the same dedup as merged ones.
				out[k] = mergeArrays(nil, patchVal)
			} else {
				out[k] = pv
			}
			continue
		}
		switch existingVal := ev.(type) {
		case []any:
			if patchVal, ok := pv.([]any); ok {
				out[k] = mergeArrays(existingVal, patchVal)
			}
		case map[string]any:
			if patchVal, ok := pv.(map[string]any); ok {
				out[k] = MergeFillMissing(existingVal, patchVal)
			}
		}
		// Non-empty scalar in existing: keep it.
	}
	return out
}

// mergeArrays concatenates base and extra, dropping duplicates. Strings
// compare case-insensitively after trimming; other element types compare
// by their JSON encoding.
func mergeArrays(base, extra []any) []any {
	out := make([]any, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, item := range append(append([]any{}, base...), extra...) {
		key := arrayKey(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func arrayKey(item any) string {
	if s, ok := item.(string); ok {
		return "s:" + strings.ToLower(strings.TrimSpace(s))
	}
	b, err := json.Marshal(item)
	if err != nil {
		return ""
	}
	return "j:" + string(b)
}

// MergeRecords fills the base record's gaps from patch and re-normalizes
// the result, so backfill passes can never erase data a better pass
// already produced. Competitor lists merge additively with first-seen
// dedup, base list first.
func MergeRecords(base, patch *model.ResearchRecord) (*model.ResearchRecord, error) {
	if base == nil {
		return patch, nil
	}
	if patch == nil {
		return base, nil
	}

	baseMap, err := recordToMap(base)
	if err != nil {
		return nil, err
	}
	patchMap, err := recordToMap(patch)
	if err != nil {
		return nil, err
	}

	merged := Normalize(MergeFillMissing(baseMap, patchMap))
	merged.Competitors = MergeAndDedupe(base.Competitors, patch.Competitors)
	return merged, nil
}

// RecordsEquivalent reports whether two records carry the same content
// once both are normalized, so shape-only differences (nil versus empty
// list, alias keys) do not count as changes.
func RecordsEquivalent(a, b *model.ResearchRecord) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	am, err := recordToMap(a)
	if err != nil {
		return false
	}
	bm, err := recordToMap(b)
	if err != nil {
		return false
	}
	aj, err := json.Marshal(Normalize(am))
	if err != nil {
		return false
	}
	bj, err := json.Marshal(Normalize(bm))
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

func recordToMap(rec *model.ResearchRecord) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "marshal research record")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, eris.Wrap(err, "unmarshal research record")
	}
	return m, nil
}
