package document

// eachText calls fn for every text block touched by [index, index+length)
// with the character range inside that block. A zero length touches the
// block holding index.
func (d *Document) eachText(index, length int, fn func(b *Block, from, to int)) {
	end := index + length
	pos := 0
	for _, b := range d.Blocks {
		start := pos
		pos += b.Len()
		if b.IsEmbed() {
			continue
		}
		if length == 0 {
			if index >= start && index < pos {
				fn(b, index-start, index-start)
			}
			continue
		}
		if end <= start || index >= pos {
			continue
		}
		from, to := max(index-start, 0), min(end-start, pos-start-1)
		fn(b, from, to)
	}
}

// ToggleMark adds m to every character in the range, or removes it when all
// of them already carry it. It reports whether the mark is now set.
func (d *Document) ToggleMark(index, length int, m Mark) bool {
	if length <= 0 {
		return false
	}
	all, found := true, false
	d.eachText(index, length, func(b *Block, from, to int) {
		for _, c := range explode(b.Spans)[from:to] {
			found = true
			if !c.marks.Has(m) {
				all = false
			}
		}
	})
	if !found {
		return false
	}
	set := !all
	d.eachText(index, length, func(b *Block, from, to int) {
		cs := explode(b.Spans)
		for k := from; k < to; k++ {
			if set {
				cs[k].marks |= m
			} else {
				cs[k].marks &^= m
			}
		}
		b.Spans = implode(cs)
	})
	return set
}

// MarksAt returns the marks of the character before index.
func (d *Document) MarksAt(index int) Mark {
	i, off := d.locate(index)
	if i >= len(d.Blocks) || d.Blocks[i].IsEmbed() || off == 0 {
		return 0
	}
	cs := explode(d.Blocks[i].Spans)
	if off > len(cs) {
		off = len(cs)
	}
	return cs[off-1].marks
}

// SetLink points the range at href; an empty href removes the link. With a
// zero length the href itself is inserted as linked text. It returns the
// index after the affected range.
func (d *Document) SetLink(index, length int, href string) int {
	if length <= 0 {
		if href == "" {
			return index
		}
		i, off := d.textBlockAt(index)
		b := d.Blocks[i]
		cs := explode(b.Spans)
		ins := make([]char, 0, len(href))
		for _, r := range href {
			ins = append(ins, char{r: r, href: href})
		}
		out := append(append(append([]char(nil), cs[:off]...), ins...), cs[off:]...)
		b.Spans = implode(out)
		return d.Start(i) + off + len(ins)
	}
	d.eachText(index, length, func(b *Block, from, to int) {
		cs := explode(b.Spans)
		for k := from; k < to; k++ {
			cs[k].href = href
		}
		b.Spans = implode(cs)
	})
	return index + length
}

// SetFormat applies a block format to every text block in the range.
func (d *Document) SetFormat(index, length int, f Format, level int) {
	if f != FormatHeading {
		level = 0
	}
	d.eachText(index, length, func(b *Block, _, _ int) {
		b.Format, b.Level = f, level
	})
}

// ToggleFormat sets f on the range, or resets the range to paragraphs when
// every block in it already has f. It reports whether f is now set.
func (d *Document) ToggleFormat(index, length int, f Format) bool {
	all, found := true, false
	d.eachText(index, length, func(b *Block, _, _ int) {
		found = true
		if b.Format != f {
			all = false
		}
	})
	if !found {
		return false
	}
	if all {
		d.SetFormat(index, length, FormatParagraph, 0)
		return false
	}
	d.SetFormat(index, length, f, 0)
	return true
}

func (d *Document) SetAlign(index, length int, a Align) {
	d.eachText(index, length, func(b *Block, _, _ int) {
		b.Align = a
	})
}
