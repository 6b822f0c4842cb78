package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(KeyGenerateContent)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Description}}")
	assert.Contains(t, prompt, "linkedin_note")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent-key")
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{KeyExtractEmail, KeyGenerateContent, KeyShortenNote}, Keys())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "fills placeholders",
			template: "Hello {{.Name}}, welcome to {{.Company}}!",
			data:     map[string]string{"Name": "Alice", "Company": "Acme Corp"},
			want:     "Hello Alice, welcome to Acme Corp!",
		},
		{
			name:     "leaves unknown placeholders",
			template: "Hi {{.ContactName}}, about {{.Company}}",
			data:     map[string]string{"Company": "Acme"},
			want:     "Hi {{.ContactName}}, about Acme",
		},
		{
			name:     "values are not expanded again",
			template: "{{.Note}}",
			data:     map[string]string{"Note": "Hi {{.Limit}}", "Limit": "300"},
			want:     "Hi {{.Limit}}",
		},
		{
			name:     "no data",
			template: "{{.A}}",
			want:     "{{.A}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestFormat_ShortenPrompt(t *testing.T) {
	result := Format(MustGet(KeyShortenNote), map[string]string{"Note": "Hi there", "Limit": "300"})

	assert.Contains(t, result, "300 characters")
	assert.Contains(t, result, Placeholder(ContactName))
	assert.NotContains(t, result, "{{.Note}}")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"ContactName", "Company"}, Placeholders("{{.ContactName}} {{.Company}} {{.ContactName}} {{ .Spaced }}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestUnresolved(t *testing.T) {
	assert.Empty(t, Unresolved("Hi {{.ContactName}}", ContactName))
	assert.Equal(t, []string{"Company"}, Unresolved("Hi {{.ContactName}} at {{.Company}}", ContactName))
	assert.Equal(t, []string{"contactname"}, Unresolved("Hi {{.contactname}}", ContactName),
		"Format would leave a differently cased name in place")
	assert.Equal(t, "Hi {{.contactname}}", Format("Hi {{.contactname}}", map[string]string{ContactName: "Jane"}))
}
