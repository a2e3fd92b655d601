package github

import "testing"

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next and last",
			header: `<https://api.github.com/enterprises/acme/copilot/billing/seats?page=2>; rel="next", <https://api.github.com/enterprises/acme/copilot/billing/seats?page=4>; rel="last"`,
			want:   "https://api.github.com/enterprises/acme/copilot/billing/seats?page=2",
		},
		{
			name:   "prev only",
			header: `<https://api.github.com/x?page=1>; rel="prev"`,
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "malformed entry",
			header: `https://api.github.com/x?page=2; rel="next"`,
			want:   "",
		},
		{
			name:   "unquoted rel",
			header: `<https://api.github.com/x?page=3>; rel=next`,
			want:   "https://api.github.com/x?page=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextLink(tt.header); got != tt.want {
				t.Fatalf("nextLink(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
