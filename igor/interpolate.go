package igor

import "strings"

// Interpolate replaces every "{{KEY}}" occurrence in s with props[KEY],
// left-to-right, non-recursively (spec.md §4.D). A "{{...}}" sequence
// whose inner text is not a valid identifier, or whose key is absent
// from props, is left in the output literally.
func Interpolate(s string, props map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	var b strings.Builder
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "{{")
		if start < 0 {
			b.WriteString(s[i:])
			break
		}
		start += i
		b.WriteString(s[i:start])

		end := strings.Index(s[start+2:], "}}")
		if end < 0 {
			b.WriteString(s[start:])
			break
		}
		end += start + 2

		key := s[start+2 : end]
		if val, ok := props[key]; ok && IsIdentifier(key) {
			b.WriteString(val)
		} else {
			b.WriteString(s[start : end+2])
		}
		i = end + 2
	}
	return b.String()
}
