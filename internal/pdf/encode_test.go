package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_EmptyInputIsValidDocument(t *testing.T) {
	doc := Encode(nil)
	require.NotEmpty(t, doc)

	info, err := Inspect(doc)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Objects)
	assert.Equal(t, 1, info.Pages)
	assert.Empty(t, info.Lines)
	assert.Contains(t, string(doc), "BT\n/F1 12 Tf\n14 TL\n72 750 Td\nET")
}

func TestEncode_Deterministic(t *testing.T) {
	lines := []string{"Plan : Automne", "Réponse : (voir annexe)", "", strings.Repeat("x", 200)}
	assert.True(t, bytes.Equal(Encode(lines), Encode(lines)))
}

func TestEncode_StructureAndOffsets(t *testing.T) {
	doc := Encode([]string{"Bonjour", "Évaluation formative – 20 %"})

	info, err := Inspect(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour", "Évaluation formative – 20 %"}, info.Lines)

	s := string(doc)
	assert.True(t, strings.HasPrefix(s, "%PDF-1.4\n"))
	assert.True(t, strings.HasSuffix(s, "%%EOF\n"))
	assert.Contains(t, s, "xref\n0 6\n0000000000 65535 f \n")
	assert.Contains(t, s, "trailer << /Size 6 /Root 1 0 R >>")
	assert.Contains(t, s, "/MediaBox [0 0 612 792]")
	assert.Contains(t, s, "/BaseFont /Helvetica")
	assert.Equal(t, fmt.Sprintf("%d", info.XrefOffset), strings.Split(s[strings.LastIndex(s, "startxref\n")+len("startxref\n"):], "\n")[0])
	assert.Equal(t, info.XrefOffset, strings.Index(s, "xref\n0 6"))
}

func TestEncode_NextLineOperatorBetweenLinesOnly(t *testing.T) {
	doc := string(Encode([]string{"un", "deux", "trois"}))
	assert.Equal(t, 2, strings.Count(doc, "T*"))
	assert.Contains(t, doc, "72 750 Td\n(un) Tj\nT*\n(deux) Tj\nT*\n(trois) Tj\nET")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "empty line kept", line: "", want: 1},
		{name: "short", line: "abc", want: 1},
		{name: "exactly 90", line: strings.Repeat("a", 90), want: 1},
		{name: "91 characters", line: strings.Repeat("a", 91), want: 2},
		{name: "180 characters", line: strings.Repeat("a", 180), want: 2},
		{name: "181 characters", line: strings.Repeat("a", 181), want: 3},
		{name: "multibyte runes count once", line: strings.Repeat("é", 90), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Wrap([]string{tt.line}, LineWidth), tt.want)
		})
	}

	got := Wrap([]string{strings.Repeat("b", 91)}, LineWidth)
	assert.Equal(t, []string{strings.Repeat("b", 90), "b"}, got)
}

func TestEncode_BlankLinesSurvive(t *testing.T) {
	lines, err := ShownText(Encode([]string{"a", "", "", "b"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "", "b"}, lines)
}

func TestEncode_EscapesDelimiters(t *testing.T) {
	original := `f(x) = \alpha (voir \(note\))`
	doc := Encode([]string{original})

	assert.Contains(t, string(doc), `(f\(x\) = \\alpha \(voir \\\(note\\\)\)) Tj`)

	lines, err := ShownText(doc)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, original, lines[0])
}

func TestEncode_StreamLengthIsByteExact(t *testing.T) {
	doc := Encode([]string{"àéèùç ÀÉ œ €", "日本語"})
	content, err := streamContent(doc)
	require.NoError(t, err)
	assert.Contains(t, string(content), "(???) Tj")

	lines, err := ShownText(doc)
	require.NoError(t, err)
	assert.Equal(t, "àéèùç ÀÉ œ €", lines[0])
}

func TestInspect_DetectsCorruptedOffsets(t *testing.T) {
	doc := Encode([]string{"ligne"})
	corrupted := bytes.Replace(doc, []byte("1 0 obj\n"), []byte("1 0 obj \n"), 1)

	_, err := Inspect(corrupted)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestInspect_RejectsNonPDF(t *testing.T) {
	inputs := map[string]string{
		"no header":             "hello",
		"xref size at eof":      "%PDF-1.4\nstartxref\n22\nxref\n0 6",
		"xref size no newline":  "%PDF-1.4\nstartxref\n22\nxref\n0 6 x",
		"huge xref size":        "%PDF-1.4\nstartxref\n22\nxref\n0 9223372036854775807\n",
		"xref larger than file": "%PDF-1.4\nstartxref\n22\nxref\n0 1000000\n0000000000 65535 f \n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Inspect([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
