package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var kTokenRegex = regexp.MustCompile(`value="(6[^"]{17})"`)

// the login page hides an 18 character token that starts with '6' in
// the value attribute of an <input>, it must be posted back alongside
// the credentials
func ExtractKToken(html string) string {
	groups := kTokenRegex.FindStringSubmatch(html)
	if len(groups) >= 2 {
		return groups[1]
	}

	start := strings.Index(html, `value="6`)
	if start < 0 {
		return ""
	}
	start += len(`value="`)
	if len(html)-start < 18 {
		return ""
	}
	return html[start : start+18]
}

var paddingRegex = regexp.MustCompile(` {2,}`)
var nbspRegex = regexp.MustCompile(`\x{00a0}{2,}`)

// collapses the runs of padding spaces the portal uses for layout
// into single newlines, single spaces are left alone
func CollapsePadding(text string) string {
	text = paddingRegex.ReplaceAllString(text, "\n")
	text = nbspRegex.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// strips markup and decodes the handful of entities the portal
// actually emits
func StripTags(text string) string {
	text = tagRegex.ReplaceAllString(text, "")
	return entities.Replace(text)
}

func SafeInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

func SafeFloat(value string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return f
}

func SplitSchedule(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
