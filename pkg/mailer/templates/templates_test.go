package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AllTemplates(t *testing.T) {
	data := map[string]any{
		"name":          "John <b>Doe</b>",
		"company":       "Acme",
		"support_url":   "https://acme.test/help",
		"old_email":     "old@example.com",
		"new_email":     "new@example.com",
		"previous_role": "USER",
		"new_role":      "ADMIN",
	}
	for _, name := range []string{"welcome", "email_changed", "role_changed", "account_deleted"} {
		t.Run(name, func(t *testing.T) {
			subject, text, html, err := Render(name, data)
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.NotEmpty(t, text)
			assert.NotEmpty(t, html)
			assert.NotContains(t, subject, "\n")
		})
	}
}

func TestRender_EscapesHTMLOnly(t *testing.T) {
	_, text, html, err := Render("welcome", map[string]any{"name": "John <b>Doe</b>"})
	require.NoError(t, err)
	assert.Contains(t, text, "John <b>Doe</b>")
	assert.Contains(t, html, "John &lt;b&gt;Doe&lt;/b&gt;")
}

func TestRender_Defaults(t *testing.T) {
	subject, _, _, err := Render("welcome", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to our service, there", subject)
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("login_otp", nil)
	assert.Error(t, err)
}
