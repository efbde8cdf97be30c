package requirement

import (
	"regexp"
	"strings"
)

var (
	// A path must start the text or follow whitespace/quote/paren so that
	// "client/server" or "and/or" never count. "app/..." names the folder.
	explicitPathRe = regexp.MustCompile("(?:^|[\\s\"'`(])((?:app)?/[A-Za-z0-9_\\-\\[\\]\\.\\(\\)@/]*)")

	// A lone "/" is the root only right after a word that introduces a route.
	rootCueRe = regexp.MustCompile(`(?i)\b(?:at|route|path|url|to)\s*["'\x60(]?$`)

	// Trailing file names are dropped: "/blog/page.tsx" is the /blog route.
	routeFileRe = regexp.MustCompile(`^[A-Za-z0-9_\-]+\.(?:tsx|ts|jsx|js|mdx|md)$`)

	dynamicSegRe = regexp.MustCompile(`\[{1,2}(?:\.\.\.)?([A-Za-z0-9_]+)\]{1,2}`)

	paramPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bby (?:its |their |the |a |an )?([a-z][a-z0-9]*)\b`),
		regexp.MustCompile(`\b([a-z][a-z0-9]*) (?:from|in|of) the (?:url|path|route|pathname)\b`),
		regexp.MustCompile(`\b([a-z][a-z0-9]*) (?:param|parameter|segment)\b`),
	}

	resourcePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:a|an|the|each|one|single) ([a-z][a-z0-9]*) by\b`),
		regexp.MustCompile(`\b(?:create|add|edit|update|delete|list|show|display|fetch|load|get)(?: all)?(?: a| an| the| new)? ([a-z][a-z0-9]*)\b`),
		regexp.MustCompile(`\b([a-z][a-z0-9]*) (?:info|information|details|detail|listing|profile)\b`),
		regexp.MustCompile(`\bfor (?:a |an |the |each )?([a-z][a-z0-9]*)\b`),
	}

	cookiePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bcookie (?:named|called) ([a-z][a-z0-9]*)\b`),
		regexp.MustCompile(`\b([a-z][a-z0-9]*) cookie\b`),
	}
)

var stopWords = wordSet(
	"a", "an", "the", "this", "that", "these", "those", "it", "its", "their", "my", "our", "your",
	"and", "or", "of", "on", "in", "at", "to", "for", "from", "with", "by", "is", "be", "all",
	"some", "each", "one", "new", "single", "which", "what", "when", "where", "how",
)

// genericWords are App Router vocabulary, never a resource or param name.
var genericWords = wordSet(
	"url", "path", "pathname", "route", "routes", "page", "pages", "segment", "param", "params",
	"parameter", "data", "client", "server", "side", "component", "button", "form", "cookie",
	"search", "query", "api", "endpoint", "handler", "layout", "loading", "metadata", "action",
	"function", "file", "app", "dynamic", "static", "nested", "default", "request", "response",
	"header", "headers", "state", "ui", "click", "error", "value", "json",
)

var cookieNoise = wordSet(
	"set", "sets", "read", "reads", "get", "gets", "store", "stores", "save", "http", "httponly",
	"secure", "same", "request", "browser", "client", "server",
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// ExplicitPath returns the first literal URL path in text, without a trailing
// slash (except for the root "/"), or "". An "app/" folder prefix and a
// trailing route file name are stripped.
func ExplicitPath(text string) string {
	for _, loc := range explicitPathRe.FindAllStringSubmatchIndex(text, -1) {
		raw := strings.TrimRight(text[loc[2]:loc[3]], ".,;:!?")
		if strings.Trim(raw, "/") == "" && !rootCueRe.MatchString(text[:loc[2]]) {
			continue
		}
		if p, ok := cleanPath(raw); ok {
			return p
		}
	}
	return ""
}

func cleanPath(raw string) (string, bool) {
	p := raw
	switch {
	case strings.HasPrefix(p, "app/"):
		p = p[len("app"):]
	case strings.HasPrefix(p, "/app/"):
		p = p[len("/app"):]
	}

	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if n := len(segs); n > 0 && routeFileRe.MatchString(segs[n-1]) {
		segs = segs[:n-1]
	}
	for _, seg := range segs {
		if !strings.ContainsAny(seg, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789[") {
			return "", false
		}
	}
	return "/" + strings.Join(segs, "/"), true
}

// extractValues fills placeholder values from the text. Keys are present only
// when a value was found; route and href are present whenever a path was
// given (route is "" for the root, href is "/").
func extractValues(text, explicitPath string) map[string]string {
	norm := Normalize(text)
	values := make(map[string]string)

	if explicitPath != "" {
		route := explicitPath
		if route == "/" {
			route = ""
		}
		values[KeyRoute] = route
		values[KeyHref] = explicitPath
	}

	param := ""
	if m := dynamicSegRe.FindStringSubmatch(explicitPath); m != nil {
		param = m[1]
	}
	if param == "" {
		param = firstCapture(norm, paramPatterns, nil)
	}
	if param != "" {
		values[KeyParam] = param
	}

	resource := ""
	if explicitPath != "" {
		for _, seg := range strings.Split(explicitPath, "/") {
			if seg == "" || strings.ContainsAny(seg, "[(@") {
				continue
			}
			w := strings.ToLower(seg)
			if !genericWords[w] && !stopWords[w] && isWord(w) {
				resource = w
				break
			}
		}
	}
	if resource == "" {
		resource = firstCapture(norm, resourcePatterns, func(w string) bool { return w != param })
	}
	if resource != "" {
		one := Singular(resource)
		values[KeyResource] = one
		values[KeyResourceTitle] = Title(one)
		values[KeyResourcePlural] = Plural(one)
	}

	for _, re := range cookiePatterns {
		cookie := ""
		for _, m := range re.FindAllStringSubmatch(norm, -1) {
			w := m[1]
			if stopWords[w] || cookieNoise[w] {
				continue
			}
			cookie = w
			break
		}
		if cookie != "" {
			values[KeyCookie] = cookie
			values[KeyCookieTitle] = Title(cookie)
			break
		}
	}
	return values
}

// firstCapture returns the first group-1 capture across patterns (in order)
// that is neither a stop word nor generic vocabulary and passes accept.
func firstCapture(norm string, patterns []*regexp.Regexp, accept func(string) bool) string {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(norm, -1) {
			w := m[1]
			if stopWords[w] || genericWords[w] {
				continue
			}
			if accept != nil && !accept(w) {
				continue
			}
			return w
		}
	}
	return ""
}

func isWord(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}
