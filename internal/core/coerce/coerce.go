package coerce

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Hint tells Coerce which semantic type a raw form string should become.
type Hint int

const (
	HintString Hint = iota
	HintNumber
	HintDate
	HintBool
	HintUUID
)

func (h Hint) String() string {
	switch h {
	case HintNumber:
		return "number"
	case HintDate:
		return "date"
	case HintBool:
		return "boolean"
	case HintUUID:
		return "uuid"
	default:
		return "string"
	}
}

// Canonical v1-v5 UUID. More permissive parsers accept braces and URN
// prefixes, which form input should not.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Coerce converts raw form-field strings into typed values per the hint map.
// Fields without a hint pass through as strings.
//
// Malformed number, date, and uuid input is dropped from the result rather
// than reported: surfacing it is the schema layer's job, and a field that is
// absent validates the same as one that was never submitted. Boolean input
// uses an explicit allow-list ("true"/"on"/"1" and "false"/"off"/"0"/"");
// anything else is dropped as well.
func Coerce(raw map[string]string, hints map[string]Hint) map[string]any {
	out := make(map[string]any, len(raw))
	for name, value := range raw {
		switch hints[name] {
		case HintNumber:
			if value == "" {
				continue
			}
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			out[name] = n
		case HintDate:
			if value == "" {
				continue
			}
			iso, ok := ToISO(value)
			if !ok {
				continue
			}
			out[name] = iso
		case HintBool:
			b, ok := parseBool(value)
			if !ok {
				continue
			}
			out[name] = b
		case HintUUID:
			if value == "" || !uuidPattern.MatchString(value) {
				continue
			}
			out[name] = value
		default:
			out[name] = value
		}
	}
	return out
}

// ToISO normalizes a date string to an ISO-8601 UTC timestamp with
// millisecond precision. A bare YYYY-MM-DD is taken as UTC midnight. Other
// inputs get their space separator replaced with "T" and, when no timezone
// is present, a "Z" suffix before parsing.
func ToISO(value string) (string, bool) {
	if dateOnlyPattern.MatchString(value) {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return "", false
		}
		return formatISO(t), true
	}

	normalized := strings.Replace(value, " ", "T", 1)
	if !hasTimezone(normalized) {
		normalized += "Z"
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return formatISO(t), true
		}
	}
	return "", false
}

func hasTimezone(value string) bool {
	if strings.HasSuffix(value, "Z") {
		return true
	}
	idx := strings.Index(value, "T")
	if idx < 0 {
		return false
	}
	rest := value[idx+1:]
	return strings.ContainsAny(rest, "+") || strings.Count(rest, "-") > 0
}

func formatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000") + "Z"
}

func parseBool(value string) (bool, bool) {
	switch value {
	case "true", "on", "1":
		return true, true
	case "false", "off", "0", "":
		return false, true
	}
	return false, false
}

// Diff returns the keys of submitted whose values differ from initial,
// including keys initial doesn't have. Used to build partial update patches
// instead of resubmitting every field.
func Diff(initial, submitted map[string]any) map[string]any {
	patch := make(map[string]any)
	for key, value := range submitted {
		prev, ok := initial[key]
		if !ok || !reflect.DeepEqual(prev, value) {
			patch[key] = value
		}
	}
	return patch
}
