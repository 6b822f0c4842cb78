package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Go, Kubernetes and Postgres", "Go, Kubernetes and Postgres"},
		{"backslash", `a\b`, `a\textbackslash{}b`},
		{"braces", "x{y}", `x\{y\}`},
		{"money and percent", "$100 & 20%", `\$100 \& 20\%`},
		{"hash underscore", "C# snake_case", `C\# snake\_case`},
		{"caret tilde", "x^2 ~y", `x\textasciicircum{}2 \textasciitilde{}y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}
