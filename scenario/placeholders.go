package scenario

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// substitute walks the parsed structure and replaces placeholder tokens
// inside string values. Operating on the tree rather than a serialized
// form keeps string values that merely resemble placeholders from being
// touched during re-parsing. Substitution never fails: on panic the
// input is returned unchanged.
func (r *Runner) substitute(v any) (out any) {
	defer func() {
		if rec := recover(); rec != nil {
			out = v
		}
	}()
	return r.walk(v)
}

func (r *Runner) walk(v any) any {
	switch val := v.(type) {
	case map[string]any:
		copied := make(map[string]any, len(val))
		for k, item := range val {
			copied[k] = r.walk(item)
		}
		return copied
	case []any:
		copied := make([]any, len(val))
		for i, item := range val {
			copied[i] = r.walk(item)
		}
		return copied
	case string:
		return r.substituteString(val)
	default:
		return v
	}
}

// substituteString resolves placeholders in one string. A string that
// is exactly one placeholder takes the resolved value as-is, keeping
// non-string context values (numbers, objects) intact. Unresolved
// placeholders stay literal; the mismatch surfaces later as an
// assertion failure rather than an abort here.
func (r *Runner) substituteString(s string) any {
	if m := placeholderPattern.FindStringSubmatch(s); m != nil && m[0] == s {
		if value, ok := r.resolveToken(m[1]); ok {
			return value
		}
		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		key := strings.Trim(token, "{}")
		if value, ok := r.resolveToken(key); ok {
			return fmt.Sprintf("%v", value)
		}
		return token
	})
}

// resolveToken maps a placeholder name to its value. Generated tokens
// produce a fresh value on every invocation so repeated runs do not
// collide on unique columns.
func (r *Runner) resolveToken(key string) (any, bool) {
	switch key {
	case "timestamp":
		return r.now().UnixMilli(), true
	case "email_rand":
		return fmt.Sprintf("user_%d_%04d@example.com", r.now().UnixNano(), rand.Intn(10000)), true
	case "phone_rand":
		return fmt.Sprintf("9%09d", rand.Intn(1000000000)), true
	}
	value, ok := r.context[key]
	return value, ok
}
