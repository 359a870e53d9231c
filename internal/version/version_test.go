package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldC := Version, GitCommit
	defer func() { Version, GitCommit = oldV, oldC }()

	Version, GitCommit = "dev", "unknown"
	if got := String(); !strings.HasPrefix(got, "pdftoolbox dev (commit unknown") {
		t.Errorf("unexpected dev banner %q", got)
	}

	Version, GitCommit = "1.4.0", "0123456789abcdef"
	got := String()
	if !strings.HasPrefix(got, "pdftoolbox v1.4.0 (commit 0123456,") {
		t.Errorf("unexpected release banner %q", got)
	}
	if Get().GitCommit != "0123456789abcdef" {
		t.Errorf("Get() should carry the full commit")
	}
}
