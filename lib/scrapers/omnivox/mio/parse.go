package mio

import (
	"regexp"

	"ovxassist-backend/lib/htmlutil"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// message ids ride on checkbox element ids, "chk" plus exactly 37
// characters
var messageIdRegex = regexp.MustCompile(`(?i)chk.{37}`)

// parsePreviews correlates four independent extractions strictly by
// position: ids from a regex over the raw body, authors, titles and
// short descriptions from three structural queries. The zip truncates
// to the shortest sequence, the portal occasionally renders mismatched
// counts and dropping the excess beats failing the whole inbox.
func parsePreviews(body string, doc *goquery.Document) []Preview {
	var ids []string
	for _, match := range messageIdRegex.FindAllString(body, -1) {
		ids = append(ids, match[3:])
	}

	var authors []string
	doc.Find(".name").Each(func(_ int, sel *goquery.Selection) {
		authors = append(authors, htmlutil.Text(sel))
	})
	var titles []string
	doc.Find(".lsTdTitle > div > em").Each(func(_ int, sel *goquery.Selection) {
		titles = append(titles, htmlutil.Text(sel))
	})
	var shortDescs []string
	doc.Find(".lsTdTitle > div").Each(func(_ int, sel *goquery.Selection) {
		shortDescs = append(shortDescs, textutil.CollapsePadding(sel.Text()))
	})

	count := min(len(ids), len(authors), len(titles), len(shortDescs))
	previews := make([]Preview, 0, count)
	for i := 0; i < count; i++ {
		previews = append(previews, Preview{
			Id:        ids[i],
			Author:    authors[i],
			Title:     titles[i],
			ShortDesc: shortDescs[i],
		})
	}
	return previews
}

// parseMessage reads a detail page. A missing #contenuWrapper is the
// portal's only "no such message" signal, there is no status code
// distinction. The metadata elements are each optional.
func parseMessage(id string, doc *goquery.Document) (Message, error) {
	wrapper := doc.Find("#contenuWrapper").First()
	if wrapper.Length() == 0 {
		return Message{}, &core.NotFoundError{Kind: "mio", Id: id}
	}

	return Message{
		Id:        id,
		Author:    htmlutil.Text(doc.Find(".cDe").First()),
		Recipient: htmlutil.Text(doc.Find("#tdACont").First()),
		Title:     htmlutil.Text(doc.Find(".cSujet").First()),
		Date:      htmlutil.Text(doc.Find(".cDate").First()),
		Content:   textutil.CollapsePadding(wrapper.Text()),
	}, nil
}
