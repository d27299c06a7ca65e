package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("<p>Hello</p>"))
	assert.True(t, ContainsHTML("line one<br/>line two"))
	assert.False(t, ContainsHTML("a < b and c > d"))
	assert.False(t, ContainsHTML("<not-a-tag>"))
	assert.False(t, ContainsHTML("plain text"))
	assert.False(t, ContainsHTML(""))
}

func TestDescription_KeptVerbatim(t *testing.T) {
	tests := []string{
		"A desert planet.",
		"  padded  ",
		"Line one<br>Line two",
		"A story about the <b> tag and HTML parsing",
		"Contains <script>alert(1)</script> sample code",
		"<p>A <strong>bold</strong> tale</p>",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Description(in))
		})
	}
}

func TestDescription_Empty(t *testing.T) {
	assert.Equal(t, "N/A", Description(""))
	assert.Equal(t, "N/A", Description("   "))
	assert.Equal(t, "N/A", Description("\n\t"))
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "A **bold** tale", Markdown("<p>A <strong>bold</strong> tale</p>"))
	assert.Equal(t, "Hi", Markdown(`<p>Hi</p><script>alert("x")</script>`))
	assert.Equal(t, "plain  text stays", Markdown("plain  text stays"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry ride again", PlainText("<b>Tom &amp; Jerry</b>\n ride   again"))
}
