package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownTemplates(t *testing.T) {
	for _, key := range []string{"cold_email", "linkedin_message", "referral_request"} {
		template, err := Get("messages.json", key)
		require.NoError(t, err, "key %s", key)
		assert.Contains(t, template, "{{.JobFacts}}")
		assert.Contains(t, template, "{{.Name}}")
		assert.Contains(t, template, "{{.Tone}}")
		assert.Contains(t, template, "{{.Projects}}")
	}

	template, err := Get("extraction.json", "extract-listing")
	require.NoError(t, err)
	assert.Contains(t, template, "{{.PageText}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("messages.json", "carrier_pigeon")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nope.json", "cold_email")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, tone {{.Tone}}", map[string]string{
		"Name": "Deepika",
		"Tone": "formal",
	})
	assert.Equal(t, "Hello Deepika, tone formal", out)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	out := Format("Hello {{.Name}} {{.Missing}}", map[string]string{"Name": "Deepika"})
	assert.Equal(t, "Hello Deepika {{.Missing}}", out)
}
