package dispatch

import (
	"strings"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/pattern"
	"github.com/routegrid/routegrid/internal/util"
)

// ignoreRule is a compiled ignore-list entry. A matching request is
// dropped without a response; the connection is ceded to whatever else
// the host process mounted on it.
type ignoreRule struct {
	// methods is nil when the rule covers every method.
	methods map[string]bool
	pat     *pattern.Pattern
}

func compileIgnoreRules(rules []config.IgnoreRule) ([]ignoreRule, error) {
	compiled := make([]ignoreRule, 0, len(rules))
	for _, rule := range rules {
		pat, err := pattern.Compile(rule.Path)
		if err != nil {
			return nil, util.WrapError(err, "compile ignore rule "+rule.Path)
		}

		var methods map[string]bool
		for _, m := range rule.Methods {
			if m == "*" {
				methods = nil
				break
			}
			if methods == nil {
				methods = make(map[string]bool, len(rule.Methods))
			}
			methods[strings.ToUpper(m)] = true
		}

		compiled = append(compiled, ignoreRule{methods: methods, pat: pat})
	}
	return compiled, nil
}

// matchIgnore reports whether any rule covers the request.
func matchIgnore(rules []ignoreRule, method, path string) bool {
	for _, rule := range rules {
		if rule.methods != nil && !rule.methods[method] {
			continue
		}
		if _, ok := rule.pat.Match(path, true); ok {
			return true
		}
	}
	return false
}
