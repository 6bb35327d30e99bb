package dispatcher

import (
	"reflect"
	"testing"
)

func TestExcluded(t *testing.T) {
	patterns := []string{"*.json", "*.md", "*.lock", "docs/*"}

	tests := []struct {
		file string
		want bool
	}{
		{"src/main.rs", false},
		{"Cargo.lock", true},
		{"config/settings.json", true},
		{"README.md", true},
		{"docs/setup.txt", true},
		{"src/docs.rs", false},
		{"Cargo.toml", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := excluded(patterns, tt.file); got != tt.want {
				t.Errorf("excluded(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestExcluded_MalformedPatternExcludesNothing(t *testing.T) {
	if excluded([]string{"[unclosed"}, "anything.rs") {
		t.Error("malformed pattern must not exclude files")
	}
}

func TestFilterFiles(t *testing.T) {
	got := filterFiles([]string{"*.lock", "*.md"}, []string{
		"src/main.rs", "Cargo.lock", "README.md", "src/resolver.rs",
	})
	want := []string{"src/main.rs", "src/resolver.rs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterFiles() = %v, want %v", got, want)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ansi stripped",
			in:   "\x1b[31merror\x1b[0m: failed",
			want: "error: failed",
		},
		{
			name: "github token redacted",
			in:   "auth with ghp_abcdefghijklmnop1234 failed",
			want: "auth with [REDACTED] failed",
		},
		{
			name: "bearer header redacted",
			in:   "Authorization: Bearer sk-ant-12345678",
			want: "Authorization: Bearer [REDACTED]",
		},
		{
			name: "secret env redacted",
			in:   "GITHUB_TOKEN=supersecret ./deploy.sh",
			want: "GITHUB_TOKEN=[REDACTED] ./deploy.sh",
		},
		{
			name: "plain diff untouched",
			in:   "+fn resolve() -> Result<IpAddr, Error> {",
			want: "+fn resolve() -> Result<IpAddr, Error> {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize(tt.in); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
