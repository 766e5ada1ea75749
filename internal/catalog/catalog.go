package catalog

// Pattern is either a literal hostname or a single-level wildcard ("*.suffix").
type Pattern string

type Category struct {
	Name     string
	Patterns []Pattern
}

// Catalog is the ordered list of categories a runner needs to reach.
type Catalog []Category

// Default returns the endpoint table for GitHub-hosted Actions runners.
// Each call builds a fresh copy so callers can't mutate a shared table.
func Default() Catalog {
	return Catalog{
		{Name: "Essential Operations", Patterns: []Pattern{
			"github.com",
			"api.github.com",
			"*.actions.githubusercontent.com",
		}},
		{Name: "Downloading Actions", Patterns: []Pattern{
			"codeload.github.com",
			"pkg.actions.githubusercontent.com",
		}},
		{Name: "GitHub Packages & Publishing Actions", Patterns: []Pattern{
			"ghcr.io",
			"*.pkg.github.com",
			"pkg-containers.githubusercontent.com",
		}},
		{Name: "Artifacts and Logs", Patterns: []Pattern{
			"results-receiver.actions.githubusercontent.com",
		}},
		{Name: "Runner Updates", Patterns: []Pattern{
			"objects.githubusercontent.com",
			"objects-origin.githubusercontent.com",
			"github-releases.githubusercontent.com",
			"github-registry-files.githubusercontent.com",
		}},
		{Name: "OIDC Tokens", Patterns: []Pattern{
			"*.actions.githubusercontent.com",
		}},
		{Name: "Git LFS", Patterns: []Pattern{
			"github-cloud.githubusercontent.com",
			"github-cloud.s3.amazonaws.com",
		}},
		{Name: "Dependabot", Patterns: []Pattern{
			"dependabot-actions.githubapp.com",
		}},
	}
}

// Hosts returns the concrete hostnames of a category, wildcards expanded in place.
func (c Category) Hosts() []string {
	out := make([]string, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		out = append(out, Expand(p)...)
	}
	return out
}

// HostCount is the number of probes a full scan of the catalog performs.
func (c Catalog) HostCount() int {
	n := 0
	for _, cat := range c {
		n += len(cat.Hosts())
	}
	return n
}
