// Package pdf writes plain text lines into a single-page PDF 1.4 document.
//
// The document always has the same five objects (catalog, page tree, page,
// content stream, font) and is byte-for-byte deterministic for a given input.
package pdf

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// LineWidth is the column budget before a line is wrapped.
	LineWidth = 90

	fontSize = 12
	leading  = 14
	marginX  = 72
	marginY  = 750

	header = "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"
)

// Encode renders lines into a PDF document. It never fails; an empty input
// still yields a valid one-page document.
func Encode(lines []string) []byte {
	content := contentStream(Wrap(lines, LineWidth))

	var b builder
	b.add([]byte("<< /Type /Catalog /Pages 2 0 R >>"))
	b.add([]byte("<< /Type /Pages /Kids [3 0 R] /Count 1 >>"))
	b.add([]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>"))
	b.add(streamObject(content))
	b.add([]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))
	return b.finish()
}

// Wrap splits every line longer than width runes into width-sized chunks.
// Empty lines are kept as a single empty line.
func Wrap(lines []string, width int) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	runes := []rune(line)
	if len(runes) == 0 || width <= 0 {
		return []string{line}
	}

	var chunks []string
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	return append(chunks, string(runes))
}

// contentStream builds the text-showing program for the wrapped lines
func contentStream(lines []string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "BT\n/F1 %d Tf\n%d TL\n%d %d Td", fontSize, leading, marginX, marginY)
	for i, line := range lines {
		if i > 0 {
			buf.WriteString("\nT*")
		}
		buf.WriteString("\n(")
		buf.Write(escape(winAnsi(line)))
		buf.WriteString(") Tj")
	}
	buf.WriteString("\nET")
	return buf.Bytes()
}

func streamObject(content []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< /Length %d >>\nstream\n", len(content))
	buf.Write(content)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}

// winAnsi maps text to the single-byte encoding declared on the font.
// Runes outside Windows-1252 become '?'.
func winAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size <= 1 {
			out = append(out, '?')
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// escape prefixes the string delimiters and the escape character itself
func escape(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, c := range raw {
		switch c {
		case '\\', '(', ')':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// builder accumulates object bodies; finish assigns numbers and offsets in one pass
type builder struct {
	objects [][]byte
}

func (b *builder) add(body []byte) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

func (b *builder) finish() []byte {
	var buf bytes.Buffer
	buf.WriteString(header)

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	size := len(b.objects) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer << /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xref)
	return buf.Bytes()
}
