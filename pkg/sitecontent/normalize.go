package sitecontent

import (
	"math"
)

// Normalization policy: lenient-normalize, strict-shape. Admin UIs send
// partial drafts frequently, so missing or mistyped fields are coerced to
// defaults rather than rejected. A write fails validation only when the
// payload is not a JSON object at all, or when a required identifying field
// is not a finite number.

type normalizeFunc func(spec SectionSpec, season *int, payload any) (Document, error)

func normalizerFor(kind SectionKind) normalizeFunc {
	switch kind {
	case KindLeagues:
		return normalizeLeagues
	case KindWagerTracker:
		return normalizeWagerTracker
	case KindPageContent:
		return normalizePageContent
	default:
		return normalizeGeneric
	}
}

func normalizeLeagues(spec SectionSpec, season *int, payload any) (Document, error) {
	obj, seasonVal, err := requireObjectWithSeason(spec, season, payload)
	if err != nil {
		return nil, err
	}

	doc := Document{
		"season": seasonVal,
		"rows":   coerceArray(obj["rows"]),
		"notes":  coerceString(obj["notes"], ""),
	}
	return doc, nil
}

func normalizeWagerTracker(spec SectionSpec, season *int, payload any) (Document, error) {
	obj, seasonVal, err := requireObjectWithSeason(spec, season, payload)
	if err != nil {
		return nil, err
	}

	eligibility := coerceObject(obj["eligibility"])
	eligibility["computedAt"] = coerceString(eligibility["computedAt"], "")

	doc := Document{
		"season":      seasonVal,
		"entries":     coerceArray(obj["entries"]),
		"eligibility": eligibility,
		"settings":    coerceObject(obj["settings"]),
	}
	return doc, nil
}

func normalizePageContent(spec SectionSpec, season *int, payload any) (Document, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, &ValidationError{Section: spec.Slug, Reason: "payload must be a JSON object"}
	}

	doc := Document{
		"title":    coerceString(obj["title"], ""),
		"body":     coerceString(obj["body"], ""),
		"hero":     coerceObject(obj["hero"]),
		"sections": coerceArray(obj["sections"]),
	}
	if season != nil {
		doc["season"] = float64(*season)
	}
	return doc, nil
}

func normalizeGeneric(spec SectionSpec, season *int, payload any) (Document, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, &ValidationError{Section: spec.Slug, Reason: "payload must be a JSON object"}
	}

	doc := make(Document, len(obj))
	for k, v := range obj {
		doc[k] = v
	}
	return doc, nil
}

// requireObjectWithSeason enforces the strict-shape half of the policy for
// season-scoped documents: the payload must be an object, and its season
// (payload field first, request parameter as fallback) must be finite.
func requireObjectWithSeason(spec SectionSpec, season *int, payload any) (map[string]any, float64, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, 0, &ValidationError{Section: spec.Slug, Reason: "payload must be a JSON object"}
	}

	if raw, present := obj["season"]; present {
		n, finite := finiteNumber(raw)
		if !finite {
			return nil, 0, &ValidationError{Section: spec.Slug, Reason: "season must be a finite number"}
		}
		return obj, n, nil
	}
	if season != nil {
		return obj, float64(*season), nil
	}
	return nil, 0, &ValidationError{Section: spec.Slug, Reason: "season is required"}
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok && obj != nil
}

func finiteNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func coerceArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{}
}

func coerceObject(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok && obj != nil {
		return obj
	}
	return map[string]any{}
}

func coerceString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
