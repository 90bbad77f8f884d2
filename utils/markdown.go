package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	mdPolicy = bluemonday.UGCPolicy()
)

func init() {
	mdPolicy.AllowImages()
	mdPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	mdPolicy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts user-written markdown into sanitized HTML.
// On a parse failure the raw source is sanitized and returned as-is.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return mdPolicy.Sanitize(source)
	}
	return string(mdPolicy.SanitizeBytes(buf.Bytes()))
}
