package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpand_LiteralUnchanged(t *testing.T) {
	for _, cat := range Default() {
		for _, p := range cat.Patterns {
			if p.IsWildcard() {
				continue
			}
			got := Expand(p)
			if diff := cmp.Diff([]string{string(p)}, got); diff != "" {
				t.Fatalf("Expand(%q) mismatch (-want +got):\n%s", p, diff)
			}
		}
	}
}

func TestExpand_KnownWildcards(t *testing.T) {
	cases := []struct {
		in   Pattern
		want []string
	}{
		{"*.actions.githubusercontent.com", []string{
			"pipelines.actions.githubusercontent.com",
			"artifacts.actions.githubusercontent.com",
			"results.actions.githubusercontent.com",
		}},
		{"*.pkg.github.com", []string{
			"npm.pkg.github.com",
			"nuget.pkg.github.com",
			"maven.pkg.github.com",
		}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, Expand(c.in)); diff != "" {
			t.Fatalf("Expand(%q) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestExpand_UnknownWildcardFallsBack(t *testing.T) {
	got := Expand("*.example.org")
	if len(got) != 1 || got[0] != "example.org" {
		t.Fatalf("want [example.org], got %v", got)
	}
}

func TestExpand_ReturnsCopy(t *testing.T) {
	a := Expand("*.pkg.github.com")
	a[0] = "mutated"
	b := Expand("*.pkg.github.com")
	if b[0] != "npm.pkg.github.com" {
		t.Fatalf("wildcard table was mutated through returned slice: %v", b)
	}
}

func TestDefault_CategoriesAndCounts(t *testing.T) {
	c := Default()
	if len(c) != 8 {
		t.Fatalf("want 8 categories, got %d", len(c))
	}
	want := map[string]int{
		"Essential Operations":                 5,
		"Downloading Actions":                  2,
		"GitHub Packages & Publishing Actions": 5,
		"Artifacts and Logs":                   1,
		"Runner Updates":                       4,
		"OIDC Tokens":                          3,
		"Git LFS":                              2,
		"Dependabot":                           1,
	}
	total := 0
	for _, cat := range c {
		n, ok := want[cat.Name]
		if !ok {
			t.Fatalf("unexpected category %q", cat.Name)
		}
		if got := len(cat.Hosts()); got != n {
			t.Fatalf("%s: want %d hosts, got %d", cat.Name, n, got)
		}
		total += n
	}
	if c.HostCount() != total {
		t.Fatalf("HostCount=%d want %d", c.HostCount(), total)
	}
}

func TestDefault_EveryPatternExpands(t *testing.T) {
	for _, cat := range Default() {
		for _, p := range cat.Patterns {
			if len(Expand(p)) == 0 {
				t.Fatalf("%s: pattern %q expanded to nothing", cat.Name, p)
			}
		}
	}
}

func TestHosts_WildcardInsertedInPlace(t *testing.T) {
	cat := Category{Name: "x", Patterns: []Pattern{"a.test", "*.pkg.github.com", "b.test"}}
	want := []string{"a.test", "npm.pkg.github.com", "nuget.pkg.github.com", "maven.pkg.github.com", "b.test"}
	if diff := cmp.Diff(want, cat.Hosts()); diff != "" {
		t.Fatalf("Hosts mismatch (-want +got):\n%s", diff)
	}
}
