package zoho

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ToPlainText strips HTML markup from an article body, joining the text
// nodes with single spaces so words from adjacent elements do not run into
// each other. Unparseable markup is returned unchanged.
func ToPlainText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var parts []string
	var collect func(s *goquery.Selection)
	collect = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			collect(c)
		})
	}
	collect(doc.Selection)

	return strings.Join(parts, " ")
}
