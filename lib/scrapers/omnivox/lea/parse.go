package lea

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"ovxassist-backend/lib/htmlutil"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// splits a card heading like "603-101-MQ Introduction to College
// English" on its first whitespace run
func splitCodeTitle(text string) (code, title string) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx:])
}

// parseClassCard reads one course card. The desc block has no semantic
// markup, it is a single text blob like
//
//	"Sect. 00001 - Mon, Wed 10:00 - 11:30, JANE DOE"
//
// carved by textual landmarks: section sits between the first "0" and
// the following " -", the schedule between the first "- " and the last
// ", ", the teacher after that last ", ". Grades come from positional
// rules over the .note-principale elements. This positional fragility
// mirrors the only way the portal exposes the information.
func parseClassCard(card *goquery.Selection) (Class, error) {
	titleElem := card.Find(".card-panel-title").First()
	if titleElem.Length() == 0 {
		return Class{}, &core.ParsingError{Op: "class card", Missing: ".card-panel-title"}
	}

	var class Class
	class.Code, class.Title = splitCodeTitle(htmlutil.Text(titleElem))

	if desc := card.Find(".card-panel-desc").First(); desc.Length() > 0 {
		descText := desc.Text()

		sectionStart := strings.Index(descText, "0")
		sectionEnd := strings.Index(descText, " -")
		if sectionStart >= 0 && sectionEnd > sectionStart {
			class.Section = strings.TrimSpace(descText[sectionStart:sectionEnd])
		}

		dashIdx := strings.Index(descText, "- ")
		commaIdx := strings.LastIndex(descText, ", ")
		if dashIdx >= 0 && commaIdx >= dashIdx+2 {
			class.Schedule = textutil.SplitSchedule(descText[dashIdx+2 : commaIdx])
		}
		if commaIdx >= 0 {
			class.Teacher = strings.TrimSpace(descText[commaIdx+2:])
		}
	}

	notes := card.Find(".note-principale")
	if notes.Length() > 0 {
		grade := htmlutil.Text(notes.Eq(0))
		// the portal renders a lone dash while no grade is published
		if grade != "" && grade != "-" {
			class.Grade = grade
		}
	}
	switch {
	case notes.Length() > 3:
		class.Average = textutil.SafeFloat(htmlutil.Text(notes.Eq(2)), 0)
		class.HasAverage = true
		class.Median = textutil.SafeFloat(htmlutil.Text(notes.Eq(3)), 0)
		class.HasMedian = true
	case notes.Length() > 1:
		class.Average = textutil.SafeFloat(htmlutil.Text(notes.Eq(1)), 0)
		class.HasAverage = true
		if notes.Length() > 2 {
			class.Median = textutil.SafeFloat(htmlutil.Text(notes.Eq(2)), 0)
			class.HasMedian = true
		}
	}

	files := card.Find(".file-indicator-number")
	if files.Length() > 0 {
		class.NewDocuments = textutil.SafeInt(htmlutil.Text(files.Eq(0)), 0)
	}
	if files.Length() > 1 {
		class.NewAssignments = textutil.SafeInt(htmlutil.Text(files.Eq(1)), 0)
	}

	return class, nil
}

func parseDocumentSummaries(ctx context.Context, doc *goquery.Document) []DocumentSummary {
	var summaries []DocumentSummary
	doc.Find(".itemDataGrid, .itemDataGridAltern").Each(func(_ int, row *goquery.Selection) {
		anchors := htmlutil.GetAnchors(ctx, row.Find("a"))
		if len(anchors) == 0 {
			return
		}
		summary := DocumentSummary{
			Name:               anchors[0].Name,
			Href:               anchors[0].Href,
			AvailableDocuments: "0",
		}
		cells := row.Find("td")
		if cells.Length() > 2 {
			summary.AvailableDocuments = htmlutil.Text(cells.Eq(2))
		}
		summaries = append(summaries, summary)
	})
	return summaries
}

var controlRunRegex = regexp.MustCompile(`[\t\r\n]+`)

func parseClassDocuments(doc *goquery.Document) []Category {
	var categories []Category
	doc.Find(".CategorieDocumentEtudiant").Each(func(_ int, table *goquery.Selection) {
		var documents []Document
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			nameElem := row.Find(".lblTitreDocumentDansListe").First()
			// header and spacer rows carry no title element
			if nameElem.Length() == 0 {
				return
			}
			document := Document{Name: htmlutil.Text(nameElem)}

			if desc := row.Find(".divDescriptionDocumentDansListe").First(); desc.Length() > 0 {
				document.Description = controlRunRegex.ReplaceAllString(
					strings.TrimSpace(desc.Text()), "\n",
				)
			}
			if posted := row.Find(".DocDispo").First(); posted.Length() > 0 {
				document.Posted = strings.TrimSpace(
					strings.TrimPrefix(htmlutil.Text(posted), "since"),
				)
			}
			// a single child node inside the star column means the
			// "new document" star is gone, so the document was viewed
			if star := row.Find("#colonneEtoileVisualisation").First(); star.Length() > 0 {
				document.Viewed = htmlutil.ChildCount(star.Nodes[0]) == 1
			}

			documents = append(documents, document)
		})
		if len(documents) == 0 {
			return
		}

		name := "Not categorized"
		if button := table.Find(".boutonEnabled").First(); button.Length() > 0 {
			name = htmlutil.Text(button)
		}
		categories = append(categories, Category{Name: name, Documents: documents})
	})
	return categories
}
