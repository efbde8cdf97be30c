package requirement

import (
	"strings"
	"unicode"
)

// Normalize lower-cases text, splits code identifiers ("useSearchParams"
// becomes "use search params usesearchparams") and collapses everything that
// is not a letter or digit into single spaces.
func Normalize(text string) string {
	var words []string
	for _, raw := range strings.Fields(text) {
		core := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if isCodeIdentifier(core) {
			words = append(words, splitIdentifier(core)...)
			continue
		}
		words = append(words, raw)
	}

	var sb strings.Builder
	space := true
	for _, r := range strings.ToLower(strings.Join(words, " ")) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// splitIdentifier splits a code identifier into lower-cased words and, when it
// had several parts, appends the joined original.
func splitIdentifier(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	if strings.ContainsAny(s, "_-") {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool {
			return r == '_' || r == '-'
		}) {
			parts = append(parts, strings.ToLower(part))
		}
		if len(parts) > 1 {
			parts = append(parts, strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s)))
		}
		return dedup(parts)
	}

	var current strings.Builder
	var prevUpper, prevLower bool
	for i, r := range s {
		isUpper := unicode.IsUpper(r)
		isLower := unicode.IsLower(r)

		if i > 0 {
			// "HTTPServer" -> "HTTP" + "Server"
			if prevUpper && isLower && current.Len() > 1 {
				word := current.String()
				parts = append(parts, strings.ToLower(word[:len(word)-1]))
				current.Reset()
				current.WriteString(word[len(word)-1:])
			}
			if prevLower && isUpper && current.Len() > 0 {
				parts = append(parts, strings.ToLower(current.String()))
				current.Reset()
			}
		}
		current.WriteRune(r)
		prevUpper = isUpper
		prevLower = isLower || unicode.IsDigit(r)
	}
	if current.Len() > 0 {
		parts = append(parts, strings.ToLower(current.String()))
	}
	if len(parts) > 1 {
		parts = append(parts, strings.ToLower(s))
	}
	return dedup(parts)
}

// isCodeIdentifier checks if the string looks like a code identifier
func isCodeIdentifier(s string) bool {
	if len(s) < 2 {
		return false
	}
	first := rune(s[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	if strings.ContainsAny(s, "_-") {
		return true
	}

	var hasUpper, hasLower bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	// "Theme" is a capitalised word, not camelCase.
	if hasUpper && hasLower && unicode.IsUpper(first) {
		for _, r := range s[1:] {
			if unicode.IsUpper(r) {
				return true
			}
		}
		return false
	}
	return hasUpper && hasLower
}

// dedup removes duplicates while preserving order
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := items[:0]
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}

// irregular singular forms the suffix rules get wrong.
var irregular = map[string]string{
	"cookies":  "cookie",
	"movies":   "movie",
	"series":   "series",
	"news":     "news",
	"children": "child",
	"people":   "person",
	"statuses": "status",
	"aliases":  "alias",
	"indices":  "index",
}

// Singular returns a naive singular form of an English word.
func Singular(w string) string {
	if s, ok := irregular[w]; ok {
		return s
	}
	n := len(w)
	switch {
	case n <= 3:
		return w
	case strings.HasSuffix(w, "sses"):
		return w[:n-2]
	case strings.HasSuffix(w, "ies") && n > 4:
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "zes"):
		return w[:n-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:n-1]
	}
	return w
}

// Plural returns a naive plural form of a singular English word.
func Plural(w string) string {
	for p, s := range irregular {
		if s == w && p != w {
			return p
		}
	}
	n := len(w)
	switch {
	case n == 0:
		return w
	case strings.HasSuffix(w, "y") && n > 1 && !strings.ContainsRune("aeiou", rune(w[n-2])):
		return w[:n-1] + "ies"
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"), strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"), strings.HasSuffix(w, "z"):
		return w + "es"
	}
	return w + "s"
}

// Title upper-cases the first letter.
func Title(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func singularText(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Singular(w)
	}
	return strings.Join(out, " ")
}
