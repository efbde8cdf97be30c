package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule identifies an App Router consistency rule.
type Rule string

const (
	RuleExclusiveDirectives Rule = "exclusive-directives"
	RuleForbiddenDirective  Rule = "required-directive-forbidden"
	RuleClientHookBoundary  Rule = "client-hook-without-use-client"
	RuleServerOnlyInClient  Rule = "server-only-api-in-client"
	RuleSearchParamsSuspend Rule = "search-params-without-suspense"
	RuleLegacyRouter        Rule = "legacy-next-router"

	// RuleOwnAntiPattern flags rendered output that violates an anti-pattern
	// of the entry that produced it. Only detectable after rendering.
	RuleOwnAntiPattern Rule = "own-anti-pattern"
)

// Issue is a consistency rule violation on one artifact (or on the whole
// action when Artifact is empty).
type Issue struct {
	Rule     Rule   `json:"rule"`
	Artifact string `json:"artifact,omitempty"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	if i.Artifact == "" {
		return fmt.Sprintf("[%s] %s", i.Rule, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Rule, i.Artifact, i.Message)
}

// clientHooks must only run in client modules.
var clientHooks = []string{
	"useState",
	"useEffect",
	"useReducer",
	"useRef",
	"useContext",
	"useTransition",
	"useOptimistic",
	"useActionState",
	"useFormStatus",
	"useRouter",
	"usePathname",
	"useSearchParams",
	"useParams",
}

var (
	hookCallRe    = regexp.MustCompile(`\b(` + strings.Join(clientHooks, "|") + `)\s*\(`)
	eventHandleRe = regexp.MustCompile(`\bon(Click|Change|Submit|Input|KeyDown)=\{`)
	serverOnlyRe  = regexp.MustCompile(`\b(cookies|headers)\s*\(\s*\)`)
)

const (
	sourceNextHeaders = "next/headers"
	sourceNextRouter  = "next/router"
	sourceReact       = "react"
	nameSuspense      = "Suspense"
	nameSearchParams  = "useSearchParams"
)

// CheckConsistency applies every rule to an action's artifacts. It works on
// both templates and rendered output since the rules only look at directives,
// imports and code tokens.
func CheckConsistency(artifacts []Artifact) []Issue {
	var issues []Issue
	usesSearchParams := ""
	hasSuspense := false

	for _, a := range artifacts {
		client := a.IsClient()

		if client && a.HasDirective(DirectiveUseServer) {
			issues = append(issues, Issue{
				Rule:     RuleExclusiveDirectives,
				Artifact: a.Path,
				Message:  "artifact declares both 'use client' and 'use server'",
			})
		}

		for _, d := range a.Directives {
			for _, f := range a.Forbidden {
				if d == f {
					issues = append(issues, Issue{
						Rule:     RuleForbiddenDirective,
						Artifact: a.Path,
						Message:  fmt.Sprintf("directive %q is both required and forbidden", d),
					})
				}
			}
		}

		if !client {
			if hook := clientHookUsed(a); hook != "" {
				issues = append(issues, Issue{
					Rule:     RuleClientHookBoundary,
					Artifact: a.Path,
					Message:  fmt.Sprintf("%s requires a 'use client' module", hook),
				})
			}
		}

		if client && (a.ImportsFrom(sourceNextHeaders) || serverOnlyRe.MatchString(a.Code)) {
			issues = append(issues, Issue{
				Rule:     RuleServerOnlyInClient,
				Artifact: a.Path,
				Message:  "cookies()/headers() are server-only and cannot run in a client module",
			})
		}

		if a.ImportsFrom(sourceNextRouter) {
			issues = append(issues, Issue{
				Rule:     RuleLegacyRouter,
				Artifact: a.Path,
				Message:  "next/router is the Pages Router API; use next/navigation",
			})
		}

		if usesSearchParams == "" && (a.ImportsName(nameSearchParams) || strings.Contains(a.Code, nameSearchParams+"(")) {
			usesSearchParams = a.Path
		}
		if importsFrom(a, nameSuspense, sourceReact) {
			hasSuspense = true
		}
	}

	if usesSearchParams != "" && !hasSuspense {
		issues = append(issues, Issue{
			Rule:     RuleSearchParamsSuspend,
			Artifact: usesSearchParams,
			Message:  "useSearchParams needs a parent artifact that wraps it in <Suspense> from react",
		})
	}
	return issues
}

func clientHookUsed(a Artifact) string {
	for _, h := range clientHooks {
		if a.ImportsName(h) {
			return h
		}
	}
	if m := hookCallRe.FindStringSubmatch(a.Code); m != nil {
		return m[1]
	}
	if m := eventHandleRe.FindString(a.Code); m != "" {
		return strings.TrimSuffix(m, "={")
	}
	return ""
}

func importsFrom(a Artifact, name, source string) bool {
	for _, imp := range a.Imports {
		if imp.From != source {
			continue
		}
		for _, n := range imp.Names {
			if n == name {
				return true
			}
		}
	}
	return false
}
