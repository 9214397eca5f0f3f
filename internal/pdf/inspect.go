package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrMalformed is wrapped by every structural error reported by Check.
var ErrMalformed = errors.New("malformed pdf")

const xrefEntryLen = 20

// Info describes a document produced by Encode
type Info struct {
	Objects    int
	Pages      int
	XrefOffset int
	Lines      []string
}

// Inspect verifies the structure of doc and returns what it found
func Inspect(doc []byte) (*Info, error) {
	offsets, xref, err := readXref(doc)
	if err != nil {
		return nil, err
	}

	for i, off := range offsets {
		want := fmt.Sprintf("%d 0 obj\n", i+1)
		if off < 0 || off >= len(doc) || !bytes.HasPrefix(doc[off:], []byte(want)) {
			return nil, fmt.Errorf("%w: object %d not found at offset %d", ErrMalformed, i+1, off)
		}
	}

	info := &Info{Objects: len(offsets), XrefOffset: xref}
	if len(offsets) >= 2 {
		pages := objectBody(doc, offsets[1])
		if idx := bytes.Index(pages, []byte("/Count ")); idx >= 0 {
			info.Pages, _ = strconv.Atoi(string(leadingDigits(pages[idx+len("/Count "):])))
		}
	}
	if info.Pages != 1 {
		return nil, fmt.Errorf("%w: expected 1 page, found %d", ErrMalformed, info.Pages)
	}

	content, err := streamContent(doc)
	if err != nil {
		return nil, err
	}
	info.Lines = shownStrings(content)
	return info, nil
}

// ShownText returns the decoded argument of every show-text operator, in order
func ShownText(doc []byte) ([]string, error) {
	content, err := streamContent(doc)
	if err != nil {
		return nil, err
	}
	return shownStrings(content), nil
}

func readXref(doc []byte) ([]int, int, error) {
	if !bytes.HasPrefix(doc, []byte("%PDF-1.4")) {
		return nil, 0, fmt.Errorf("%w: missing header", ErrMalformed)
	}

	idx := bytes.LastIndex(doc, []byte("startxref\n"))
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w: missing startxref", ErrMalformed)
	}
	xref, err := strconv.Atoi(string(leadingDigits(doc[idx+len("startxref\n"):])))
	if err != nil || xref <= 0 || xref >= len(doc) {
		return nil, 0, fmt.Errorf("%w: bad startxref", ErrMalformed)
	}

	section := doc[xref:]
	if !bytes.HasPrefix(section, []byte("xref\n0 ")) {
		return nil, 0, fmt.Errorf("%w: no xref at offset %d", ErrMalformed, xref)
	}
	section = section[len("xref\n0 "):]
	digits := leadingDigits(section)
	size, err := strconv.Atoi(string(digits))
	if err != nil || size < 1 {
		return nil, 0, fmt.Errorf("%w: bad xref size", ErrMalformed)
	}
	if len(section) <= len(digits) || section[len(digits)] != '\n' {
		return nil, 0, fmt.Errorf("%w: bad xref subsection header", ErrMalformed)
	}
	section = section[len(digits)+1:]

	if size > len(section)/xrefEntryLen {
		return nil, 0, fmt.Errorf("%w: truncated xref", ErrMalformed)
	}
	if string(section[:xrefEntryLen]) != "0000000000 65535 f \n" {
		return nil, 0, fmt.Errorf("%w: bad free entry", ErrMalformed)
	}

	offsets := make([]int, 0, size-1)
	for i := 1; i < size; i++ {
		entry := string(section[i*xrefEntryLen : (i+1)*xrefEntryLen])
		if !strings.HasSuffix(entry, " 00000 n \n") {
			return nil, 0, fmt.Errorf("%w: bad xref entry %d", ErrMalformed, i)
		}
		off, err := strconv.Atoi(entry[:10])
		if err != nil {
			return nil, 0, fmt.Errorf("%w: bad xref offset %d", ErrMalformed, i)
		}
		offsets = append(offsets, off)
	}

	trailer := section[size*xrefEntryLen:]
	if !bytes.Contains(trailer, []byte(fmt.Sprintf("/Size %d ", size))) || !bytes.Contains(trailer, []byte("/Root 1 0 R")) {
		return nil, 0, fmt.Errorf("%w: bad trailer", ErrMalformed)
	}
	return offsets, xref, nil
}

func objectBody(doc []byte, off int) []byte {
	body := doc[off:]
	if end := bytes.Index(body, []byte("\nendobj\n")); end >= 0 {
		return body[:end]
	}
	return body
}

func streamContent(doc []byte) ([]byte, error) {
	start := bytes.Index(doc, []byte("<< /Length "))
	if start < 0 {
		return nil, fmt.Errorf("%w: no content stream", ErrMalformed)
	}
	rest := doc[start+len("<< /Length "):]
	length, err := strconv.Atoi(string(leadingDigits(rest)))
	if err != nil {
		return nil, fmt.Errorf("%w: bad stream length", ErrMalformed)
	}
	open := bytes.Index(rest, []byte("stream\n"))
	if open < 0 {
		return nil, fmt.Errorf("%w: no stream keyword", ErrMalformed)
	}
	rest = rest[open+len("stream\n"):]
	if len(rest) < length || !bytes.HasPrefix(rest[length:], []byte("\nendstream")) {
		return nil, fmt.Errorf("%w: stream length mismatch", ErrMalformed)
	}
	return rest[:length], nil
}

// shownStrings decodes every literal string followed by Tj
func shownStrings(content []byte) []string {
	var out []string
	for i := 0; i < len(content); i++ {
		if content[i] != '(' {
			continue
		}
		raw, next := readLiteral(content, i+1)
		i = next
		tail := bytes.TrimLeft(content[min(next+1, len(content)):], " ")
		if bytes.HasPrefix(tail, []byte("Tj")) {
			out = append(out, decodeWinAnsi(raw))
		}
	}
	return out
}

// readLiteral reads a literal string body starting after '(' and returns the
// unescaped bytes and the index of the closing ')'
func readLiteral(content []byte, i int) ([]byte, int) {
	var out []byte
	depth := 0
	for ; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\\' && i+1 < len(content):
			i++
			switch e := content[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, e)
			}
		case c == '(':
			depth++
			out = append(out, c)
		case c == ')':
			if depth == 0 {
				return out, i
			}
			depth--
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out, i
}

func decodeWinAnsi(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		sb.WriteRune(charmap.Windows1252.DecodeByte(b))
	}
	return sb.String()
}

func leadingDigits(b []byte) []byte {
	n := 0
	for n < len(b) && b[n] >= '0' && b[n] <= '9' {
		n++
	}
	return b[:n]
}
