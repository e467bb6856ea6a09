package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/navlens/nav-audit/constants"
)

// ExtractJSONObject recovers a JSON object from free text: it strips
// markdown code fences and, failing a clean parse, cuts the region between
// the first '{' and the last '}'. Returns nil when no candidate object is
// present.
func ExtractJSONObject(text string) []byte {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return []byte(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil
	}
	return []byte(candidate)
}

// SanitizeComparison normalizes a comparison document that failed strict
// validation so it can be re-validated:
//   - renames known key synonyms onto our schema
//   - canonicalizes the severity label
//   - coerces string numbers for discrepancy_pct/confidence
//   - drops null/empty optionals and unknown keys
func SanitizeComparison(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	rename("summary", "assessment")
	rename("verdict", "assessment")
	rename("discrepancy", "discrepancy_pct")
	rename("discrepancy_percent", "discrepancy_pct")
	rename("comment", "notes")
	rename("comments", "notes")

	if v, ok := m["severity"]; ok {
		s, _ := v.(string)
		canon, _ := constants.CanonicalizeSeverity(s)
		m["severity"] = string(canon)
	}

	for _, k := range []string{"discrepancy_pct", "confidence"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			// already a number
		case string:
			s := strings.TrimSuffix(strings.TrimSpace(t), "%")
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				m[k] = f
			} else {
				delete(m, k)
				dropped = append(dropped, k+"(unparseable)")
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}
	if v, ok := m["discrepancy_pct"].(float64); ok && v < 0 {
		m["discrepancy_pct"] = -v
	}

	for k, v := range m {
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		}
	}

	// unknown keys break additionalProperties:false, remove them
	known := map[string]struct{}{
		"assessment": {}, "severity": {}, "discrepancy_pct": {},
		"confidence": {}, "notes": {},
	}
	for k := range m {
		if _, ok := known[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
