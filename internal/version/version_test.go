package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestPrettyKeepsVersionText(t *testing.T) {
	color.NoColor = true
	orig := Version
	defer func() { Version = orig }()

	tests := []string{"0.1.0-dev", "1.2.3", "2.0", "1.4.0-rc.1"}
	for _, v := range tests {
		Version = v
		if got := Pretty(); got != v {
			t.Errorf("Pretty() with Version %q = %q", v, got)
		}
	}
}

func TestShortCommit(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "abc123def456"
	tests := []struct {
		n    int
		want string
	}{
		{7, "abc123d"},
		{0, "abc123def456"},
		{64, "abc123def456"},
	}
	for _, tt := range tests {
		if got := ShortCommit(tt.n); got != tt.want {
			t.Errorf("ShortCommit(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
