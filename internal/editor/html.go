package editor

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

// RenderHTML renders a document straight to HTML markup.
func RenderHTML(doc Document) string {
	var buf bytes.Buffer
	WriteHTML(&buf, RenderDocument(doc))
	return buf.String()
}

// WriteHTML writes the HTML representation of nodes to buf. Text content
// is escaped for the HTML context; embed payloads are written through
// untouched (see Embed).
func WriteHTML(buf *bytes.Buffer, nodes []Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case Heading:
			fmt.Fprintf(buf, "<h%d>", n.Level)
			writeSegments(buf, n.Text)
			fmt.Fprintf(buf, "</h%d>", n.Level)

		case Paragraph:
			buf.WriteString("<p>")
			writeSegments(buf, n.Text)
			buf.WriteString("</p>")

		case List:
			tag := "ul"
			if n.Ordered {
				tag = "ol"
			}
			buf.WriteString("<" + tag + ">")
			for _, item := range n.Items {
				buf.WriteString("<li>" + html.EscapeString(item) + "</li>")
			}
			buf.WriteString("</" + tag + ">")

		case Image:
			buf.WriteString("<figure>")
			buf.WriteString(`<img src="` + html.EscapeString(n.URL) + `" alt="` + html.EscapeString(n.Caption) + `"/>`)
			if n.Caption != "" {
				buf.WriteString("<figcaption>" + html.EscapeString(n.Caption) + "</figcaption>")
			}
			buf.WriteString("</figure>")

		case Quote:
			buf.WriteString("<blockquote><p>" + html.EscapeString(n.Text) + "</p>")
			if n.Attribution != "" {
				buf.WriteString("<cite>" + html.EscapeString(n.Attribution) + "</cite>")
			}
			buf.WriteString("</blockquote>")

		case Code:
			buf.WriteString("<pre><code>" + html.EscapeString(n.Code) + "</code></pre>")

		case Table:
			buf.WriteString("<table>")
			if len(n.Header) > 0 {
				buf.WriteString("<thead><tr>")
				for _, cell := range n.Header {
					buf.WriteString("<th>" + html.EscapeString(cell) + "</th>")
				}
				buf.WriteString("</tr></thead>")
			}
			buf.WriteString("<tbody>")
			for _, row := range n.Rows {
				buf.WriteString("<tr>")
				for _, cell := range row {
					buf.WriteString("<td>" + html.EscapeString(cell) + "</td>")
				}
				buf.WriteString("</tr>")
			}
			buf.WriteString("</tbody></table>")

		case Callout:
			buf.WriteString(`<div class="callout">`)
			if n.Title != "" {
				buf.WriteString("<strong>" + html.EscapeString(n.Title) + "</strong>")
			}
			buf.WriteString("<p>" + html.EscapeString(n.Message) + "</p></div>")

		case Divider:
			buf.WriteString("<hr/>")

		case Embed:
			// Raw insertion: the document producer is trusted.
			buf.WriteString(`<div class="embed">` + n.HTML + "</div>")
		}
	}
}

func writeSegments(buf *bytes.Buffer, segments []Segment) {
	for _, seg := range segments {
		text := html.EscapeString(seg.Text)
		// Paragraph text keeps its literal line breaks.
		text = strings.ReplaceAll(text, "\n", "<br/>")
		if seg.Bold {
			buf.WriteString("<b>" + text + "</b>")
		} else {
			buf.WriteString(text)
		}
	}
}
