package catalog

import "strings"

const wildcardPrefix = "*."

// Known concrete hosts behind provider wildcards. Wildcard DNS can't be
// enumerated, so this has to be kept in sync with GitHub's documentation.
var wildcardHosts = map[Pattern][]string{
	"*.actions.githubusercontent.com": {
		"pipelines.actions.githubusercontent.com",
		"artifacts.actions.githubusercontent.com",
		"results.actions.githubusercontent.com",
	},
	"*.pkg.github.com": {
		"npm.pkg.github.com",
		"nuget.pkg.github.com",
		"maven.pkg.github.com",
	},
}

// IsWildcard reports whether p carries the wildcard marker.
func (p Pattern) IsWildcard() bool {
	return strings.HasPrefix(string(p), "*")
}

// Expand maps a pattern to the hostnames to probe. It never returns an
// empty slice: an unknown wildcard degrades to its bare suffix.
func Expand(p Pattern) []string {
	if !p.IsWildcard() {
		return []string{string(p)}
	}
	if hosts, ok := wildcardHosts[p]; ok {
		out := make([]string, len(hosts))
		copy(out, hosts)
		return out
	}
	return []string{strings.Replace(string(p), wildcardPrefix, "", 1)}
}
