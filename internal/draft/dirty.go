package draft

import (
	"strings"

	"github.com/tripdesk/tripdesk/internal/model"
)

// HasMeaningfulContent reports whether any of the selected fields holds a
// non-empty trimmed string or a non-empty sequence. An empty fields list
// means every field of the payload is checked.
func HasMeaningfulContent(payload model.FormPayload, fields []string) bool {
	if len(fields) == 0 {
		for _, v := range payload {
			if meaningfulValue(v) {
				return true
			}
		}
		return false
	}

	for _, f := range fields {
		if meaningfulValue(payload[f]) {
			return true
		}
	}
	return false
}

func meaningfulValue(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	default:
		return false
	}
}

// payloadEquals compares every field of payload against the corresponding
// field of the snapshot. Sequences compare element-wise and order-sensitive;
// scalars compare strictly, with no type normalization.
func payloadEquals(payload, snapshot model.FormPayload) bool {
	for name, v := range payload {
		if !valueEquals(v, snapshot[name]) {
			return false
		}
	}
	return true
}

func valueEquals(a, b any) bool {
	as, aok := toSequence(a)
	bs, bok := toSequence(b)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valueEquals(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		if len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			bv, ok := bm[k]
			if !ok || !valueEquals(v, bv) {
				return false
			}
		}
		return true
	}

	return a == b
}

func toSequence(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
