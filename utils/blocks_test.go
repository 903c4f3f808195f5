package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertBlocksToHTML(t *testing.T) {
	blocks := []Block{
		{ID: "1", Type: "text", Content: "Hello there"},
		{ID: "2", Type: "image", Content: "https://cdn.example.com/banner.png"},
		{ID: "3", Type: "button", Content: "Read more", URL: "https://example.com/post"},
	}

	html := ConvertBlocksToHTML(blocks)

	assert.Contains(t, html, `<div class="text-block">Hello there</div>`)
	assert.Contains(t, html, `<img src="https://cdn.example.com/banner.png"`)
	assert.Contains(t, html, `<a href="https://example.com/post"`)
	assert.Contains(t, html, `Read more</a>`)
}

func TestConvertBlocksToHTMLSkipsUnknownTypes(t *testing.T) {
	blocks := []Block{
		{ID: "1", Type: "video", Content: "https://example.com/clip.mp4"},
		{ID: "2", Type: "text", Content: "kept"},
	}

	html := ConvertBlocksToHTML(blocks)

	assert.NotContains(t, html, "clip.mp4")
	assert.Contains(t, html, "kept")
}

func TestParseBlocksMalformedContent(t *testing.T) {
	assert.Nil(t, ParseBlocks("not json"))
	assert.Nil(t, ParseBlocks(""))
	assert.Nil(t, ParseBlocks("   "))
}

func TestRenderCampaignHTML(t *testing.T) {
	content := `[{"id":"1","type":"text","content":"Newsletter body"}]`
	assert.Equal(t, `<div class="text-block">Newsletter body</div>`, RenderCampaignHTML(content))

	assert.Equal(t, "", RenderCampaignHTML("{broken"))
}
