package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "gobem v"+Version) || !strings.Contains(s, GitCommit) {
		t.Errorf("unexpected version string %q", s)
	}
}
