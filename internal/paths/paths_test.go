package paths

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dir/sub/f.m", "dir/sub/f.m"},
		{"dir\\sub\\f.m", "dir/sub/f.m"},
		{"./dir/f.m", "dir/f.m"},
		{"././f.m", "f.m"},
		{"  main.m  ", "main.m"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main.m", "main"},
		{"dir/sub/helper.m", "helper"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
	}

	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main.m", ""},
		{"sub/helper.m", "sub"},
		{"a/b/c.m", "a/b"},
	}

	for _, tt := range tests {
		if got := Dir(tt.in); got != tt.want {
			t.Errorf("Dir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsWithinProject(t *testing.T) {
	root := t.TempDir()

	if !IsWithinProject(root+"/sub/f.m", root) {
		t.Error("path under root should be within project")
	}
	if IsWithinProject(root+"/../outside.m", root) {
		t.Error("path above root should not be within project")
	}
}
