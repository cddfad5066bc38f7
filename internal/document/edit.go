package document

import "strings"

// InsertBlock places an embed or text block at index and returns the index
// just past it. A text block holding index is split when index falls inside
// its text.
func (d *Document) InsertBlock(index int, b *Block) int {
	i, off := d.locate(index)
	switch {
	case i == len(d.Blocks):
	case d.Blocks[i].IsEmbed():
		if off > 0 {
			i++
		}
	case off == 0:
	case off >= d.Blocks[i].textLen():
		i++
	default:
		d.split(i, off)
		i++
	}
	d.insertAt(i, b)
	return d.Start(i) + b.Len()
}

// RemoveBlock deletes the block with the given id.
func (d *Document) RemoveBlock(id string) bool {
	_, i := d.Block(id)
	if i < 0 {
		return false
	}
	d.removeAt(i)
	return true
}

// split cuts the i-th text block at off. The tail becomes a new block with
// the same format.
func (d *Document) split(i, off int) *Block {
	b := d.Blocks[i]
	cs := explode(b.Spans)
	if off > len(cs) {
		off = len(cs)
	}
	tail := &Block{
		ID:     d.newID(),
		Kind:   KindText,
		Format: b.Format,
		Level:  b.Level,
		Align:  b.Align,
		Spans:  implode(append([]char(nil), cs[off:]...)),
	}
	b.Spans = implode(cs[:off])
	d.insertAt(i+1, tail)
	return tail
}

// textBlockAt returns a text block and offset for index, creating an empty
// paragraph when index sits on an embed or past the end.
func (d *Document) textBlockAt(index int) (int, int) {
	i, off := d.locate(index)
	if i < len(d.Blocks) && !d.Blocks[i].IsEmbed() {
		return i, off
	}
	if i < len(d.Blocks) && off > 0 {
		i++
	}
	d.insertAt(i, d.NewText(""))
	return i, 0
}

// InsertText inserts text at index and returns the index after it. Line
// breaks in text split the block.
func (d *Document) InsertText(index int, text string) int {
	if text == "" {
		return index
	}
	i, off := d.textBlockAt(index)
	for n, line := range strings.Split(text, "\n") {
		if n > 0 {
			d.split(i, off)
			i++
			off = 0
		}
		off = d.insertRunes(d.Blocks[i], off, line)
	}
	return d.Start(i) + off
}

// insertRunes inserts s into b at off, carrying the attributes of the
// preceding character.
func (d *Document) insertRunes(b *Block, off int, s string) int {
	if s == "" {
		return off
	}
	cs := explode(b.Spans)
	if off > len(cs) {
		off = len(cs)
	}
	var attr char
	if off > 0 {
		attr = cs[off-1]
	}
	ins := make([]char, 0, len(s))
	for _, r := range s {
		ins = append(ins, char{r: r, marks: attr.marks, href: attr.href})
	}
	out := make([]char, 0, len(cs)+len(ins))
	out = append(out, cs[:off]...)
	out = append(out, ins...)
	out = append(out, cs[off:]...)
	b.Spans = implode(out)
	return off + len(ins)
}

// deleteAt removes the character at pos. Deleting a line break joins the
// following text block, or drops an empty line in front of an embed. Any
// position inside an embed removes the whole embed.
func (d *Document) deleteAt(pos int) {
	i, off := d.locate(pos)
	if i >= len(d.Blocks) {
		return
	}
	b := d.Blocks[i]
	if b.IsEmbed() {
		d.removeAt(i)
		return
	}
	cs := explode(b.Spans)
	if off < len(cs) {
		b.Spans = implode(append(cs[:off], cs[off+1:]...))
		return
	}
	if i+1 >= len(d.Blocks) {
		return
	}
	next := d.Blocks[i+1]
	switch {
	case !next.IsEmbed():
		b.Spans = implode(append(cs, explode(next.Spans)...))
		d.removeAt(i + 1)
	case len(cs) == 0:
		d.removeAt(i)
	}
}

// DeleteBackward removes the position before index, like Backspace, and
// returns the new cursor index.
func (d *Document) DeleteBackward(index int) int {
	if index <= 0 {
		return 0
	}
	i, _ := d.locate(index - 1)
	if i < len(d.Blocks) && d.Blocks[i].IsEmbed() {
		start := d.Start(i)
		d.removeAt(i)
		return start
	}
	d.deleteAt(index - 1)
	return index - 1
}

// DeleteForward removes the position at index, like Delete, and returns the
// new cursor index.
func (d *Document) DeleteForward(index int) int {
	i, _ := d.locate(index)
	if i < len(d.Blocks) && d.Blocks[i].IsEmbed() {
		start := d.Start(i)
		d.removeAt(i)
		return start
	}
	d.deleteAt(index)
	return index
}

// DeleteRange removes length positions starting at index.
func (d *Document) DeleteRange(index, length int) int {
	for n := 0; n < length; n++ {
		before := d.Length()
		if index >= before {
			break
		}
		d.deleteAt(index)
		if d.Length() == before {
			break
		}
	}
	return index
}
