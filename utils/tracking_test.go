package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTrackingPixelURL(t *testing.T) {
	url := GenerateTrackingPixelURL("https://mail.example.com", "42")

	assert.True(t, strings.HasPrefix(url, "https://mail.example.com/track/open/42/"))
}

func TestGenerateClickTrackURL(t *testing.T) {
	url := GenerateClickTrackURL("https://mail.example.com", "42", "https://example.com/offer?x=1")

	assert.True(t, strings.HasPrefix(url, "https://mail.example.com/track/click/42/"))
	assert.Contains(t, url, "url=https%3A%2F%2Fexample.com%2Foffer%3Fx%3D1")
}

func TestInjectTrackingAppendsPixel(t *testing.T) {
	html := InjectTracking("<p>hello</p>", "https://mail.example.com", "7")

	assert.Contains(t, html, "<p>hello</p>")
	assert.Contains(t, html, `/track/open/7/`)
	assert.Contains(t, html, `width="1" height="1"`)
}

func TestInjectTrackingRewritesLinks(t *testing.T) {
	html := `<a href="https://example.com/post">read</a>`
	out := InjectTracking(html, "https://mail.example.com", "7")

	assert.NotContains(t, out, `href="https://example.com/post"`)
	assert.Contains(t, out, "/track/click/7/")
	assert.Contains(t, out, "url=https%3A%2F%2Fexample.com%2Fpost")
}
