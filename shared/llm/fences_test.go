package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain code", "print(1)", "print(1)"},
		{"labeled fence", "```python\nprint(1)\n```", "print(1)"},
		{"tilde fence", "~~~\nx := 1\n~~~\n", "x := 1"},
		{"opening fence only", "```go\nx := 1", "x := 1"},
		{"surrounding whitespace", "\n\n```\na\nb\n```\n\n", "a\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
