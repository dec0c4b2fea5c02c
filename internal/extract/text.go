package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// substantialLength is the minimum length of a line worth keeping as a title.
const substantialLength = 10

var (
	numberedLineRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	bulletLineRe   = regexp.MustCompile(`^\s*[•\-*–·]\s+(.+)$`)
	listMarkerRe   = regexp.MustCompile(`^\s*(?:\d+[.)]|[•\-*–·])\s+`)
	dashSplitRe    = regexp.MustCompile(`\s+[-–—]\s+`)
	blankLineRe    = regexp.MustCompile(`\n\s*\n`)
)

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// cleanItem strips markdown emphasis, quotes and trailing punctuation noise.
func cleanItem(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "**", "")
	value = strings.ReplaceAll(value, "__", "")
	value = strings.Trim(value, "\"'`")
	return strings.TrimSpace(value)
}

// stripListMarker removes a leading "1." or bullet marker.
func stripListMarker(line string) string {
	return listMarkerRe.ReplaceAllString(line, "")
}

// splitOnDash separates "title - description".
func splitOnDash(value string) (string, string) {
	parts := dashSplitRe.Split(value, 2)
	if len(parts) < 2 {
		return cleanItem(value), ""
	}
	return cleanItem(parts[0]), cleanItem(parts[1])
}

// splitOnColon separates "title: description".
func splitOnColon(value string) (string, string) {
	idx := strings.Index(value, ":")
	if idx < 0 {
		return cleanItem(value), ""
	}
	return cleanItem(value[:idx]), cleanItem(value[idx+1:])
}

func matchLines(text string, re *regexp.Regexp) []string {
	var out []string
	for _, line := range splitLines(text) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if item := cleanItem(m[1]); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	return strings.Contains(lower, "here are") || strings.HasSuffix(lower, ":")
}

func sequentialID(prefix string, index int) string {
	return fmt.Sprintf("%s-%d", prefix, index+1)
}

func textOf(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// recordsOf converts JSON-decoded arrays ([]any of map[string]any) into maps.
// A lone object counts as a one-record list.
func recordsOf(input any) ([]map[string]any, bool) {
	switch v := input.(type) {
	case []map[string]any:
		return v, true
	case map[string]any:
		return []map[string]any{v}, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			switch rec := item.(type) {
			case map[string]any:
				out = append(out, rec)
			case string:
				out = append(out, map[string]any{"title": rec})
			default:
				out = append(out, map[string]any{"title": fmt.Sprint(rec)})
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func stringField(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := rec[key]; ok && raw != nil {
			if s := cleanItem(fmt.Sprint(raw)); s != "" {
				return s
			}
		}
	}
	return ""
}

func intField(rec map[string]any, key string) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return 0
	}
}
