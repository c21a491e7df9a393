package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	got := String()
	if !strings.HasPrefix(got, "lanematch v1.2.3 ") {
		t.Errorf("String() = %q, want prefix %q", got, "lanematch v1.2.3 ")
	}
	if !strings.Contains(got, GitSHA) || !strings.Contains(got, BuildTime) {
		t.Errorf("String() = %q, missing git sha or build time", got)
	}
}
