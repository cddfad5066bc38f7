package document

import (
	"html"
	"strconv"
	"strings"
)

const (
	videoContainerStyle = "display: flex; flex-direction: column; align-items: center; margin: 10px 0;"
	videoFrameStyle     = "width: 100%; max-width: 560px; height: 315px;"
	videoCaptionStyle   = "font-size: 14px; color: #666; text-align: center; margin-top: 5px; outline: none; cursor: text;"
)

// HTML serializes the document in the markup the public site renders.
// Consecutive list items share one list element and consecutive code lines
// share one pre element.
func (d *Document) HTML() string {
	var sb strings.Builder
	for i := 0; i < len(d.Blocks); {
		b := d.Blocks[i]
		switch {
		case b.Kind == KindImage:
			writeImage(&sb, b)
		case b.Kind == KindVideo:
			writeVideo(&sb, b)
		case b.Format == FormatOrdered || b.Format == FormatBullet:
			tag := "ul"
			if b.Format == FormatOrdered {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for ; i < len(d.Blocks) && d.Blocks[i].Kind == KindText && d.Blocks[i].Format == b.Format; i++ {
				writeLine(&sb, "li", d.Blocks[i])
			}
			sb.WriteString("</" + tag + ">")
			continue
		case b.Format == FormatCode:
			sb.WriteString(`<pre class="ql-syntax" spellcheck="false">`)
			for j := i; i < len(d.Blocks) && d.Blocks[i].Kind == KindText && d.Blocks[i].Format == FormatCode; i++ {
				if i > j {
					sb.WriteByte('\n')
				}
				sb.WriteString(html.EscapeString(d.Blocks[i].Text()))
			}
			sb.WriteString("</pre>")
			continue
		case b.Format == FormatHeading:
			writeLine(&sb, "h"+strconv.Itoa(clampLevel(b.Level)), b)
		case b.Format == FormatQuote:
			writeLine(&sb, "blockquote", b)
		default:
			writeLine(&sb, "p", b)
		}
		i++
	}
	return sb.String()
}

func (d *Document) String() string {
	return d.HTML()
}

// InlineHTML renders the spans of a text block.
func (b *Block) InlineHTML() string {
	var sb strings.Builder
	writeSpans(&sb, b.Spans)
	return sb.String()
}

func clampLevel(l int) int {
	return min(max(l, 1), 6)
}

func writeLine(sb *strings.Builder, tag string, b *Block) {
	sb.WriteString("<" + tag)
	if b.Align != AlignLeft {
		sb.WriteString(` class="ql-align-` + string(b.Align) + `"`)
	}
	sb.WriteByte('>')
	if len(b.Spans) == 0 {
		sb.WriteString("<br>")
	} else {
		writeSpans(sb, b.Spans)
	}
	sb.WriteString("</" + tag + ">")
}

func writeSpans(sb *strings.Builder, spans []Span) {
	for _, s := range spans {
		t := html.EscapeString(s.Text)
		if s.Marks.Has(Strike) {
			t = "<s>" + t + "</s>"
		}
		if s.Marks.Has(Underline) {
			t = "<u>" + t + "</u>"
		}
		if s.Marks.Has(Italic) {
			t = "<em>" + t + "</em>"
		}
		if s.Marks.Has(Bold) {
			t = "<strong>" + t + "</strong>"
		}
		if s.Href != "" {
			t = `<a href="` + html.EscapeString(s.Href) + `" rel="noopener noreferrer" target="_blank">` + t + "</a>"
		}
		sb.WriteString(t)
	}
}

func writeImage(sb *strings.Builder, b *Block) {
	sb.WriteString(`<p><img src="` + html.EscapeString(b.Src) + `"`)
	if b.Alt != "" {
		sb.WriteString(` alt="` + html.EscapeString(b.Alt) + `"`)
	}
	sb.WriteString("></p>")
}

func writeVideo(sb *strings.Builder, b *Block) {
	sb.WriteString(`<div class="video-container" style="` + videoContainerStyle + `">`)
	sb.WriteString(`<iframe class="ql-video" src="` + html.EscapeString(b.Src) +
		`" frameborder="0" allowfullscreen="true" style="` + videoFrameStyle + `"></iframe>`)
	sb.WriteString(`<p contenteditable="true" style="` + videoCaptionStyle + `">` +
		html.EscapeString(b.Caption) + `</p>`)
	sb.WriteString("</div>")
}
