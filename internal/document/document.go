// Package document is the structured model behind a post body.
//
// A document is a flat list of blocks. Text blocks are lines carrying a block
// format (heading, list item, quote, code line) and an alignment; their inline
// content is a list of spans with marks and an optional link. Images and videos
// are embed blocks. Positions are flat indices: a text block is as long as its
// text plus one for the line break, an image is one position long and a video,
// frame plus caption, is two.
package document

import (
	"strconv"
	"unicode/utf8"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

type Format string

const (
	FormatParagraph Format = ""
	FormatHeading   Format = "heading"
	FormatOrdered   Format = "ordered"
	FormatBullet    Format = "bullet"
	FormatQuote     Format = "blockquote"
	FormatCode      Format = "code-block"
)

type Align string

const (
	AlignLeft    Align = ""
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// ParseAlign maps a toolbar value to an Align; unknown values mean left.
func ParseAlign(s string) Align {
	switch Align(s) {
	case AlignCenter, AlignRight, AlignJustify:
		return Align(s)
	}
	return AlignLeft
}

type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Underline
	Strike
)

func (m Mark) Has(o Mark) bool { return m&o == o }

type Span struct {
	Text  string
	Marks Mark
	Href  string
}

type Block struct {
	ID     string
	Kind   Kind
	Format Format
	// Heading level, 1 through 6.
	Level int
	Align Align
	Spans []Span

	Src     string
	Alt     string
	Caption string
}

func (b *Block) IsEmbed() bool {
	return b.Kind != KindText
}

// Text returns the block's text without marks.
func (b *Block) Text() string {
	if len(b.Spans) == 1 {
		return b.Spans[0].Text
	}
	var n int
	for _, s := range b.Spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range b.Spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

func (b *Block) textLen() int {
	n := 0
	for _, s := range b.Spans {
		n += utf8.RuneCountInString(s.Text)
	}
	return n
}

// Len is the number of positions the block occupies.
func (b *Block) Len() int {
	switch b.Kind {
	case KindImage:
		return 1
	case KindVideo:
		return 2
	}
	return b.textLen() + 1
}

func (b *Block) clone() *Block {
	c := *b
	c.Spans = append([]Span(nil), b.Spans...)
	return &c
}

type Document struct {
	Blocks []*Block

	nextID int
}

func New() *Document {
	return &Document{}
}

func (d *Document) newID() string {
	d.nextID++
	return "b" + strconv.Itoa(d.nextID)
}

// NewText returns a paragraph holding plain text. It is not inserted.
func (d *Document) NewText(text string) *Block {
	b := &Block{ID: d.newID(), Kind: KindText}
	if text != "" {
		b.Spans = []Span{{Text: text}}
	}
	return b
}

func (d *Document) NewImage(src, alt string) *Block {
	return &Block{ID: d.newID(), Kind: KindImage, Src: src, Alt: alt}
}

func (d *Document) NewVideo(src, caption string) *Block {
	return &Block{ID: d.newID(), Kind: KindVideo, Src: src, Caption: caption}
}

// Length is the total number of positions in the document.
func (d *Document) Length() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.Len()
	}
	return n
}

// Block finds a block by id and returns it with its position in Blocks.
func (d *Document) Block(id string) (*Block, int) {
	for i, b := range d.Blocks {
		if b.ID == id {
			return b, i
		}
	}
	return nil, -1
}

// Start returns the flat index at which the i-th block begins.
func (d *Document) Start(i int) int {
	pos := 0
	for j := 0; j < i && j < len(d.Blocks); j++ {
		pos += d.Blocks[j].Len()
	}
	return pos
}

// locate maps a flat index to a block position and an offset inside it.
// Indices at or past the end map to (len(Blocks), 0), the append position.
func (d *Document) locate(index int) (int, int) {
	if index < 0 {
		index = 0
	}
	pos := 0
	for i, b := range d.Blocks {
		l := b.Len()
		if index < pos+l {
			return i, index - pos
		}
		pos += l
	}
	return len(d.Blocks), 0
}

// At returns the block containing index, or nil past the end.
func (d *Document) At(index int) *Block {
	i, _ := d.locate(index)
	if i >= len(d.Blocks) {
		return nil
	}
	return d.Blocks[i]
}

func (d *Document) Clone() *Document {
	c := &Document{nextID: d.nextID, Blocks: make([]*Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		c.Blocks[i] = b.clone()
	}
	return c
}

func (d *Document) insertAt(i int, b *Block) {
	if b.ID == "" {
		b.ID = d.newID()
	}
	d.Blocks = append(d.Blocks, nil)
	copy(d.Blocks[i+1:], d.Blocks[i:])
	d.Blocks[i] = b
}

func (d *Document) removeAt(i int) {
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
}

// char is one rune of inline text with its attributes.
type char struct {
	r     rune
	marks Mark
	href  string
}

func explode(spans []Span) []char {
	var cs []char
	for _, s := range spans {
		for _, r := range s.Text {
			cs = append(cs, char{r: r, marks: s.Marks, href: s.Href})
		}
	}
	return cs
}

func implode(cs []char) []Span {
	var spans []Span
	var buf []rune
	for i, c := range cs {
		buf = append(buf, c.r)
		last := i == len(cs)-1
		if last || cs[i+1].marks != c.marks || cs[i+1].href != c.href {
			spans = append(spans, Span{Text: string(buf), Marks: c.marks, Href: c.href})
			buf = buf[:0]
		}
	}
	return spans
}

// Range is a selection in flat indices. A zero Length is a caret.
type Range struct {
	Index  int
	Length int
}

func (r Range) End() int { return r.Index + r.Length }
