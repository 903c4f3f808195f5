package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block is one unit of campaign content
type Block struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // text, image, button
	Content string `json:"content"`
	URL     string `json:"url,omitempty"` // button target
}

// ParseBlocks decodes stored campaign content. Malformed JSON degrades to
// an empty block list rather than failing the caller.
func ParseBlocks(content string) []Block {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal([]byte(content), &blocks); err != nil {
		return nil
	}
	return blocks
}

// ConvertBlocksToHTML flattens ordered content blocks into email HTML.
// Unknown block types are skipped.
func ConvertBlocksToHTML(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case "text":
			sb.WriteString(fmt.Sprintf(`<div class="text-block">%s</div>`, block.Content))
		case "image":
			sb.WriteString(fmt.Sprintf(`<img src="%s" alt="Email content" style="max-width: 100%%; height: auto;" />`, block.Content))
		case "button":
			sb.WriteString(fmt.Sprintf(
				`<a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 6px;">%s</a>`,
				block.URL, block.Content))
		}
	}
	return sb.String()
}

// RenderCampaignHTML parses stored content and renders it in one step.
func RenderCampaignHTML(content string) string {
	return ConvertBlocksToHTML(ParseBlocks(content))
}
