package editor

import (
	"log/slog"
	"regexp"
	"strings"
)

// Segment is a run of inline text, optionally bold.
type Segment struct {
	Text string
	Bold bool
}

// Node is one renderable unit produced from a document. The concrete
// types below cover every recognized block kind; a view layer maps each
// to its markup.
type Node interface {
	nodeKind() Kind
}

type Heading struct {
	Level int
	Text  []Segment
}

type Paragraph struct {
	Text []Segment
}

type List struct {
	Ordered bool
	Items   []string
}

type Image struct {
	URL     string
	Caption string
}

type Quote struct {
	Text        string
	Attribution string
}

type Code struct {
	Code string
}

type Table struct {
	Header []string
	Rows   [][]string
}

type Callout struct {
	Title   string
	Message string
}

type Divider struct{}

// Embed carries third-party markup that is inserted into the output
// without sanitization. Documents are authored only by trusted,
// authenticated editors; escaping the payload here would break
// legitimate embeds.
type Embed struct {
	HTML string
}

func (Heading) nodeKind() Kind   { return KindHeader }
func (Paragraph) nodeKind() Kind { return KindParagraph }
func (List) nodeKind() Kind      { return KindList }
func (Image) nodeKind() Kind     { return KindImage }
func (Quote) nodeKind() Kind     { return KindQuote }
func (Code) nodeKind() Kind      { return KindCode }
func (Table) nodeKind() Kind     { return KindTable }
func (Callout) nodeKind() Kind   { return KindWarning }
func (Divider) nodeKind() Kind   { return KindDelimiter }
func (Embed) nodeKind() Kind     { return KindEmbed }

var inlineEntities = strings.NewReplacer(
	"&nbsp;", "\u00a0",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

var boldSpanRx = regexp.MustCompile(`<b>.*?</b>`)

// DecodeInlineText decodes the fixed set of entity escapes the editing
// surface emits, then splits the result on <b>...</b> wrappers into plain
// and bold segments. Unmatched bold tags stay in the text as plain
// content. Entities are decoded before the bold split, matching the
// display renderer this pipeline replaces.
func DecodeInlineText(raw string) []Segment {
	if raw == "" {
		return nil
	}

	decoded := inlineEntities.Replace(raw)

	var segments []Segment
	last := 0
	for _, loc := range boldSpanRx.FindAllStringIndex(decoded, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: decoded[last:loc[0]]})
		}
		segments = append(segments, Segment{
			Text: decoded[loc[0]+len("<b>") : loc[1]-len("</b>")],
			Bold: true,
		})
		last = loc[1]
	}
	if last < len(decoded) {
		segments = append(segments, Segment{Text: decoded[last:]})
	}

	return segments
}

// ParseBlock interprets one raw block. It returns nil for unknown block
// types and for blocks whose payload degrades to nothing (an image with
// no file URL). It never fails: missing or mistyped fields resolve to
// empty values.
func ParseBlock(b Block) Node {
	data := b.payload()

	switch KindOf(b.Type) {
	case KindHeader:
		level := intField(data, "level")
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return Heading{Level: level, Text: DecodeInlineText(stringField(data, "text"))}

	case KindParagraph:
		return Paragraph{Text: DecodeInlineText(stringField(data, "text"))}

	case KindList:
		rawItems, _ := data["items"].([]any)
		items := make([]string, 0, len(rawItems))
		for _, item := range rawItems {
			items = append(items, itemText(item))
		}
		return List{Ordered: stringField(data, "style") == "ordered", Items: items}

	case KindImage:
		file, _ := data["file"].(map[string]any)
		url := stringField(file, "url")
		if url == "" {
			return nil
		}
		return Image{URL: url, Caption: stringField(data, "caption")}

	case KindQuote:
		// Quote text is deliberately left undecoded; attributions and
		// quoted material keep their literal characters.
		return Quote{Text: stringField(data, "text"), Attribution: stringField(data, "caption")}

	case KindCode:
		return Code{Code: stringField(data, "code")}

	case KindTable:
		rows := tableRows(data)
		if len(rows) == 0 {
			return Table{}
		}
		// First row is the header row. Body rows are rendered as-is even
		// when their length differs from the header's.
		return Table{Header: rows[0], Rows: rows[1:]}

	case KindWarning:
		return Callout{Title: stringField(data, "title"), Message: stringField(data, "message")}

	case KindDelimiter:
		return Divider{}

	case KindEmbed:
		return Embed{HTML: stringField(data, "embed")}

	default:
		return nil
	}
}

func tableRows(data map[string]any) [][]string {
	content, _ := data["content"].([]any)
	rows := make([][]string, 0, len(content))
	for _, rawRow := range content {
		cells, _ := rawRow.([]any)
		row := make([]string, 0, len(cells))
		for _, cell := range cells {
			s, _ := cell.(string)
			row = append(row, s)
		}
		rows = append(rows, row)
	}
	return rows
}

// Renderer turns documents into node sequences. The logger, when set,
// records blocks that were dropped during rendering.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render walks the document in order and emits one node per renderable
// block. Unknown block types and images without a file URL produce no
// node; a malformed block never stops the blocks after it from
// rendering.
func (r *Renderer) Render(doc Document) []Node {
	nodes := make([]Node, 0, len(doc.Blocks))
	for i, block := range doc.Blocks {
		node := ParseBlock(block)
		if node == nil {
			if r.logger != nil {
				r.logger.Info("skipped unrenderable block", slog.Int("index", i), slog.String("type", block.Type))
			}
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// RenderDocument renders doc without logging dropped blocks.
func RenderDocument(doc Document) []Node {
	return (&Renderer{}).Render(doc)
}
