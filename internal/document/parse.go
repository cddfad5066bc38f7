package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads stored post HTML into a document. Unknown elements are
// flattened into their text.
func Parse(src string) (*Document, error) {
	d := New()
	if strings.TrimSpace(src) == "" {
		return d, nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	p := &parser{doc: d}
	for _, n := range nodes {
		p.block(n)
	}
	p.close()
	return d, nil
}

// MustParse is Parse for trusted content; it panics on error.
func MustParse(src string) *Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}

type lineFormat struct {
	format Format
	level  int
	align  Align
}

type parser struct {
	doc  *Document
	cur  *Block
	line lineFormat
	// emitted is set once the current source line produced a block.
	emitted bool
}

func (p *parser) push(b *Block) {
	p.doc.Blocks = append(p.doc.Blocks, b)
}

func (p *parser) open() *Block {
	if p.cur == nil {
		p.cur = &Block{
			ID:     p.doc.newID(),
			Kind:   KindText,
			Format: p.line.format,
			Level:  p.line.level,
			Align:  p.line.align,
		}
		p.push(p.cur)
		p.emitted = true
	}
	return p.cur
}

func (p *parser) close() {
	if p.cur != nil {
		p.cur.Spans = implode(explode(p.cur.Spans))
	}
	p.cur = nil
}

func (p *parser) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if p.cur == nil && strings.TrimSpace(n.Data) == "" {
			return
		}
		p.line = lineFormat{}
		p.inline(n, 0, "")
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.P:
		p.textLine(n, lineFormat{align: alignOf(n)})
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		p.textLine(n, lineFormat{format: FormatHeading, level: level, align: alignOf(n)})
	case atom.Blockquote:
		p.textLine(n, lineFormat{format: FormatQuote, align: alignOf(n)})
	case atom.Pre:
		p.close()
		text := strings.TrimSuffix(textOf(n), "\n")
		for _, l := range strings.Split(text, "\n") {
			b := p.doc.NewText(l)
			b.Format = FormatCode
			p.push(b)
		}
	case atom.Ol, atom.Ul:
		p.close()
		f := FormatBullet
		if n.DataAtom == atom.Ol {
			f = FormatOrdered
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom != atom.Li {
				continue
			}
			lf := lineFormat{format: f, align: alignOf(c)}
			switch attr(c, "data-list") {
			case "bullet":
				lf.format = FormatBullet
			case "ordered":
				lf.format = FormatOrdered
			}
			p.textLine(c, lf)
		}
	case atom.Img:
		p.close()
		p.push(p.doc.NewImage(attr(n, "src"), attr(n, "alt")))
	case atom.Iframe:
		p.close()
		p.push(p.doc.NewVideo(attr(n, "src"), ""))
	case atom.Figure:
		p.close()
		if img := find(n, atom.Img); img != nil {
			p.push(p.doc.NewImage(attr(img, "src"), attr(img, "alt")))
		}
		if fc := find(n, atom.Figcaption); fc != nil {
			p.textLine(fc, lineFormat{})
		}
	case atom.Div:
		p.close()
		if hasClass(n, "video-container") {
			v := p.doc.NewVideo("", "")
			if f := find(n, atom.Iframe); f != nil {
				v.Src = attr(f, "src")
			}
			if c := find(n, atom.P); c != nil {
				v.Caption = textOf(c)
			}
			p.push(v)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c)
		}
		p.close()
	case atom.Br:
		p.close()
	default:
		p.line = lineFormat{}
		p.inline(n, 0, "")
	}
}

// textLine reads one source line. A line with no text still yields an empty
// block unless it only held embeds.
func (p *parser) textLine(n *html.Node, lf lineFormat) {
	p.close()
	p.line, p.emitted = lf, false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.inline(c, 0, "")
	}
	if !p.emitted {
		p.open()
	}
	p.close()
}

func (p *parser) inline(n *html.Node, marks Mark, href string) {
	switch n.Type {
	case html.TextNode:
		b := p.open()
		b.Spans = append(b.Spans, Span{Text: n.Data, Marks: marks, Href: href})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		marks |= Bold
	case atom.Em, atom.I:
		marks |= Italic
	case atom.U:
		marks |= Underline
	case atom.S, atom.Strike, atom.Del:
		marks |= Strike
	case atom.A:
		href = attr(n, "href")
	case atom.Br:
		p.close()
		return
	case atom.Img:
		p.close()
		p.push(p.doc.NewImage(attr(n, "src"), attr(n, "alt")))
		p.emitted = true
		return
	case atom.Iframe:
		p.close()
		p.push(p.doc.NewVideo(attr(n, "src"), ""))
		p.emitted = true
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.inline(c, marks, href)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func alignOf(n *html.Node) Align {
	for _, c := range strings.Fields(attr(n, "class")) {
		if a, ok := strings.CutPrefix(c, "ql-align-"); ok {
			return ParseAlign(a)
		}
	}
	return AlignLeft
}

func find(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
