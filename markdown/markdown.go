// Package markdown renders the markdown subset used by site content to HTML,
// and derives outlines and reading times from the same source.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	// ![alt](url) with an optional {style} or {style|width|height} suffix
	reImg = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)(?:\{([^|}]*?)(?:\|(\d+)\|(\d+))?\})?`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
	blockCode
)

// renderer tracks the open block while walking lines.
type renderer struct {
	buf          *bytes.Buffer
	open         block
	codeWrapped  bool // fenced block carries a language badge
	tableBody    bool
	imageCount   int
	headingCount int
}

func (r *renderer) close() {
	switch r.open {
	case blockPara:
		r.buf.WriteString("</p>")
	case blockList:
		r.buf.WriteString("</ul>")
	case blockOrdered:
		r.buf.WriteString("</ol>")
	case blockQuote:
		r.buf.WriteString("</blockquote>")
	case blockTable:
		if r.tableBody {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.tableBody = false
	case blockCode:
		r.buf.WriteString("</code></pre>")
		if r.codeWrapped {
			r.buf.WriteString("</div>")
			r.codeWrapped = false
		}
	}
	r.open = blockNone
}

// enter closes the current block unless it is already b, and reports
// whether b was newly opened.
func (r *renderer) enter(b block) bool {
	if r.open == b {
		return false
	}
	r.close()
	r.open = b
	return true
}

func (r *renderer) inline(s string) string {
	return FormatInline(s, &r.imageCount)
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.close()
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		if r.open == blockCode {
			r.close()
			return
		}
		r.enter(blockCode)
		lang := strings.TrimSpace(line[3:])
		if lang == "" {
			r.buf.WriteString(`<pre class="code-block"><code>`)
			return
		}
		r.codeWrapped = true
		l := html.EscapeString(lang)
		r.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + l + `">` + l + `</span>`)
		r.buf.WriteString(`<pre class="code-block"><code class="language-` + l + `">`)
		return
	}
	if r.open == blockCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteByte('\n')
		return
	}
	if strings.TrimSpace(line) == "" {
		r.close()
		return
	}

	if level, text, ok := matchHeading(line); ok {
		r.close()
		id := HeadingSlug(text, level, r.headingCount)
		r.headingCount++
		tag := "h" + strconv.Itoa(level)
		r.buf.WriteString("<" + tag + ` id="` + html.EscapeString(id) + `">`)
		r.buf.WriteString(r.inline(text))
		r.buf.WriteString(`<a class="heading-anchor" href="#` + html.EscapeString(id) + `" aria-hidden="true">#</a>`)
		r.buf.WriteString("</" + tag + ">")
		return
	}

	switch {
	case strings.HasPrefix(line, "---"):
		r.close()
		r.buf.WriteString("<hr/>")
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
		if r.enter(blockList) {
			r.buf.WriteString("<ul>")
		}
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(line[2:])) + "</li>")
	case reOrderedList.MatchString(line):
		if r.enter(blockOrdered) {
			r.buf.WriteString("<ol>")
		}
		item := reOrderedList.ReplaceAllString(line, "")
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(item)) + "</li>")
	case line == ">" || strings.HasPrefix(line, "> "):
		if r.enter(blockQuote) {
			r.buf.WriteString("<blockquote>")
		} else {
			r.buf.WriteByte(' ')
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(strings.TrimPrefix(line, ">"))))
	default:
		if r.enter(blockPara) {
			r.buf.WriteString("<p>")
		} else {
			r.buf.WriteByte(' ')
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(line)) + "\n")
	}
}

func (r *renderer) tableRow(line string) {
	if r.enter(blockTable) {
		r.buf.WriteString("<table><thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString("<th>" + r.inline(cell) + "</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if !r.tableBody {
		r.buf.WriteString("<tbody>")
		r.tableBody = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString("<td>" + r.inline(cell) + "</td>")
	}
	r.buf.WriteString("</tr>")
}

func parseTableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	line = strings.Trim(strings.TrimSpace(line), "|")
	for _, cell := range strings.Split(line, "|") {
		if strings.Trim(strings.TrimSpace(cell), "-:") != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline applies inline formatting (code, bold, italic, links, images)
// to s. imageCount tracks images across a document so only the first one is
// fetched with high priority.
func FormatInline(s string, imageCount *int) string {
	escaped := html.EscapeString(s)

	// Code spans are swapped for placeholders so nothing else formats them.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		inner := reInlineCode.FindStringSubmatch(m)[1]
		spans = append(spans, "<code>"+inner+"</code>")
		return "\x00IC" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		return imageTag(reImg.FindStringSubmatch(m), imageCount)
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := `class="underline decoration-2 underline-offset-4"`
		if match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>` + match[1] + `</a>`
	})
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
	for i, code := range spans {
		escaped = strings.Replace(escaped, "\x00IC"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

func imageTag(match []string, imageCount *int) string {
	src := SafeURL(match[2])
	if src == "" {
		return match[1]
	}
	width, height := "1024", "768"
	if match[4] != "" && match[5] != "" {
		width, height = match[4], match[5]
	}
	*imageCount++
	load := `loading="lazy"`
	if *imageCount == 1 {
		load = `fetchpriority="high"`
	}
	tag := `<img ` + load + ` width="` + width + `" height="` + height + `" alt="` + match[1] + `" src="` + src + `"`
	if match[3] != "" {
		tag += ` style="` + match[3] + `"`
	}
	return tag + ` decoding="async"/>`
}

// SafeURL validates and escapes a URL for use in an HTML attribute. Anything
// other than relative, fragment, http(s), mailto and tel URLs yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
