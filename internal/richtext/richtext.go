// Package richtext cleans editor HTML and extracts its plain text.
package richtext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps the formatting tags an essay editor produces and drops
// scripts, handlers and unknown elements.
func Sanitize(content string) string {
	return ugc.Sanitize(content)
}

// PlainText strips every tag and decodes entities.
func PlainText(content string) string {
	// Block boundaries become spaces so "<p>a</p><p>b</p>" is two words.
	r := strings.NewReplacer("</p>", " </p>", "<br>", " <br>", "<br/>", " <br/>", "<br />", " <br />", "</div>", " </div>", "</li>", " </li>")
	text := html.UnescapeString(strict.Sanitize(r.Replace(content)))
	return strings.Join(strings.Fields(text), " ")
}

// WordCount counts whitespace-separated words of the plain text.
func WordCount(content string) int {
	return len(strings.Fields(PlainText(content)))
}

func IsBlank(content string) bool {
	return strings.TrimSpace(PlainText(content)) == ""
}
