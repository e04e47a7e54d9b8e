package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nsA     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP     = "http://schemas.openxmlformats.org/presentationml/2006/main"
	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
)

// Layout title has no position of its own and inherits the master's; the
// layout body placeholder (idx 1) sits at y=1500.
var (
	masterShapes = textBox(`<p:ph type="title"/>`, 500, 300) +
		textBox(`<p:ph type="body" idx="1"/>`, 500, 2000)
	layoutShapes = textBox(`<p:ph type="title"/>`, -1, 0) +
		textBox(`<p:ph idx="1"/>`, 500, 1500)
)

type testSlide struct {
	shapes string // spTree children
	notes  string // notes page spTree children, "" for no notes page
}

func writeDeck(t *testing.T, slides ...testSlide) string {
	t.Helper()
	return writeDeckOrdered(t, nil, slides...)
}

// writeDeckOrdered builds a .pptx whose show order lists slide files by the
// 1-based numbers in order (nil means file order).
func writeDeckOrdered(t *testing.T, order []int, slides ...testSlide) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	add := func(name, body string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}

	if order == nil {
		for i := range slides {
			order = append(order, i+1)
		}
	}

	var ids, rels strings.Builder
	for i, n := range order {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, n+1)
	}
	for i, s := range slides {
		n := i + 1
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%sslide" Target="slides/slide%d.xml"/>`, n+1, relBase, n)

		add(fmt.Sprintf("ppt/slides/slide%d.xml", n), slidePart("p:sld", s.shapes))
		slideRels := fmt.Sprintf(`<Relationship Id="rId1" Type="%sslideLayout" Target="../slideLayouts/slideLayout1.xml"/>`, relBase)
		if s.notes != "" {
			slideRels += fmt.Sprintf(`<Relationship Id="rId2" Type="%snotesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, relBase, n)
			add(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), slidePart("p:notes", s.notes))
		}
		add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsPart(slideRels))
	}
	fmt.Fprintf(&rels, `<Relationship Id="rId1" Type="%sslideMaster" Target="slideMasters/slideMaster1.xml"/>`, relBase)

	add("[Content_Types].xml", xmlHeader+`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`)
	add("ppt/presentation.xml", xmlHeader+`<p:presentation xmlns:a="`+nsA+`" xmlns:p="`+nsP+`" xmlns:r="`+relationshipsNS+`">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:sldIdLst>`+ids.String()+`</p:sldIdLst></p:presentation>`)
	add("ppt/_rels/presentation.xml.rels", relsPart(rels.String()))
	add("ppt/slideLayouts/slideLayout1.xml", slidePart("p:sldLayout", layoutShapes))
	add("ppt/slideLayouts/_rels/slideLayout1.xml.rels",
		relsPart(fmt.Sprintf(`<Relationship Id="rId1" Type="%sslideMaster" Target="../slideMasters/slideMaster1.xml"/>`, relBase)))
	add("ppt/slideMasters/slideMaster1.xml", slidePart("p:sldMaster", masterShapes))

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func slidePart(root, children string) string {
	return xmlHeader + `<` + root + ` xmlns:a="` + nsA + `" xmlns:p="` + nsP + `" xmlns:r="` + relationshipsNS + `">` +
		`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		children + `</p:spTree></p:cSld></` + root + `>`
}

func relsPart(body string) string {
	return xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + body + `</Relationships>`
}

func xfrm(x, y int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="1000" cy="1000"/></a:xfrm>`, x, y)
}

// textBox is a text shape at (x, y). A negative x leaves the position unset.
func textBox(ph string, x, y int64, paras ...string) string {
	pos := ""
	if x >= 0 {
		pos = xfrm(x, y)
	}
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="s"/><p:cNvSpPr/><p:nvPr>` + ph + `</p:nvPr></p:nvSpPr>` +
		`<p:spPr>` + pos + `</p:spPr><p:txBody><a:bodyPr/><a:lstStyle/>` + strings.Join(paras, "") + `</p:txBody></p:sp>`
}

func para(level int, text string) string {
	ppr := ""
	if level > 0 {
		ppr = fmt.Sprintf(`<a:pPr lvl="%d"/>`, level)
	}
	return `<a:p>` + ppr + `<a:r><a:rPr lang="en-US"/><a:t>` + escapeXML(text) + `</a:t></a:r></a:p>`
}

func table(x, y int64, rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="4" name="t"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`)
	fmt.Fprintf(&b, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="1000" cy="1000"/></p:xfrm>`, x, y)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblGrid/>`)
	for _, row := range rows {
		b.WriteString(`<a:tr h="370840">`)
		for _, cell := range row {
			b.WriteString(`<a:tc><a:txBody><a:bodyPr/>` + para(0, cell) + `</a:txBody><a:tcPr/></a:tc>`)
		}
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return b.String()
}

func picture(x, y int64) string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="5" name="p"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rId9"/></p:blipFill><p:spPr>` + xfrm(x, y) + `</p:spPr></p:pic>`
}

func notesPage(paras ...string) string {
	return textBox(`<p:ph type="sldImg"/>`, 0, 0) + textBox(`<p:ph type="body" idx="1"/>`, 0, 5000, paras...)
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func shapeTexts(s Slide) []string {
	var out []string
	for _, sh := range s.Shapes {
		for _, p := range sh.Paragraphs {
			out = append(out, p.Text)
		}
	}
	return out
}

func TestOpen_TitleAndReadingOrder(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: textBox("", 100, 5000, para(0, "bottom")) +
		textBox("", 6000, 3000, para(0, "right")) +
		textBox(`<p:ph type="title"/>`, -1, 0, para(0, "Quarterly Review")) +
		textBox("", 100, 3000, para(0, "left"))})

	deck, err := Open(path)
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)

	s := deck.Slides[0]
	assert.Equal(t, 1, s.Number)
	assert.Equal(t, "Quarterly Review", s.Title)
	assert.Equal(t, []string{"Quarterly Review", "left", "right", "bottom"}, shapeTexts(s))

	// The title inherits the master's position through the layout.
	assert.EqualValues(t, 300, s.Shapes[0].Top)
	assert.EqualValues(t, 500, s.Shapes[0].Left)
}

func TestOpen_PlaceholderInheritsLayoutPosition(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: textBox(`<p:ph idx="1"/>`, -1, 0, para(0, "body")) +
		textBox("", 9000, 1000, para(0, "above"))})

	deck, err := Open(path)
	require.NoError(t, err)

	s := deck.Slides[0]
	assert.Equal(t, []string{"above", "body"}, shapeTexts(s))
	assert.EqualValues(t, 1500, s.Shapes[1].Top)
	assert.Empty(t, s.Title, "idx 1 is not the title")
}

func TestOpen_SameSpotKeepsDocumentOrder(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: textBox("", 0, 0, para(0, "first")) +
		textBox("", 0, 0, para(0, "second"))})

	deck, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, shapeTexts(deck.Slides[0]))
}

func TestOpen_SlideOrderFollowsPresentation(t *testing.T) {
	path := writeDeckOrdered(t, []int{2, 1},
		testSlide{shapes: textBox(`<p:ph type="title"/>`, -1, 0, para(0, "file one"))},
		testSlide{shapes: textBox(`<p:ph type="ctrTitle"/>`, -1, 0, para(0, "file two"))},
	)

	deck, err := Open(path)
	require.NoError(t, err)
	require.Len(t, deck.Slides, 2)

	assert.Equal(t, 1, deck.Slides[0].Number)
	assert.Equal(t, "file two", deck.Slides[0].Title)
	assert.Equal(t, 2, deck.Slides[1].Number)
	assert.Equal(t, "file one", deck.Slides[1].Title)
}

func TestOpen_ParagraphLevels(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: textBox("", 0, 0, para(0, "top"), para(1, "nested"), para(2, "deeper"))})

	deck, err := Open(path)
	require.NoError(t, err)

	paras := deck.Slides[0].Shapes[0].Paragraphs
	require.Len(t, paras, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{paras[0].Level, paras[1].Level, paras[2].Level})
}

func TestOpen_TablesAndObjects(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: table(0, 1000, []string{"Name", "Qty"}, []string{"Widget", "2"}) +
		picture(0, 2000)})

	deck, err := Open(path)
	require.NoError(t, err)

	shapes := deck.Slides[0].Shapes
	require.Len(t, shapes, 2)
	assert.Equal(t, KindTable, shapes[0].Kind)
	assert.Equal(t, [][]string{{"Name", "Qty"}, {"Widget", "2"}}, shapes[0].Rows)
	assert.Equal(t, KindPicture, shapes[1].Kind)
}

func TestOpen_Notes(t *testing.T) {
	path := writeDeck(t,
		testSlide{shapes: textBox("", 0, 0, para(0, "one")), notes: notesPage(para(0, "say hello"), para(1, "pause"))},
		testSlide{shapes: textBox("", 0, 0, para(0, "two"))},
	)

	deck, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, []Paragraph{{Level: 0, Text: "say hello"}, {Level: 1, Text: "pause"}}, deck.Slides[0].Notes)
	assert.Nil(t, deck.Slides[1].Notes)
}

func TestOpen_NotPresentation(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.pptx")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a zip"), 0o644))

	plainZip := filepath.Join(dir, "plain.pptx")
	f, err := os.Create(plainZip)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, _ = io.WriteString(w, "hi")
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{garbage, plainZip} {
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrNotPresentation, path)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pptx"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPresentation)
}

func TestOpen_BrokenSlideRelationship(t *testing.T) {
	path := writeDeckOrdered(t, []int{5}, testSlide{shapes: textBox("", 0, 0, para(0, "x"))})

	_, err := Open(path)
	assert.ErrorContains(t, err, "missing relationship")
}

func TestRead(t *testing.T) {
	path := writeDeck(t, testSlide{shapes: textBox("", 0, 0, para(0, "from memory"))})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	deck, err := Read(strings.NewReader(string(data)), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{"from memory"}, shapeTexts(deck.Slides[0]))
}

func TestParagraphText(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		wantRuns string
		wantFull string
	}{
		{"runs", `<p><r><t>Hello </t></r><r><t>world</t></r></p>`, "Hello world", "Hello world"},
		{"field after run", `<p><r><t>Page </t></r><fld type="slidenum"><t>3</t></fld></p>`, "Page ", "Page 3"},
		{"field only", `<p><fld type="slidenum"><t>7</t></fld></p>`, "7", "7"},
		{"line break", `<p><r><t>a</t></r><br/><r><t>b</t></r></p>`, "ab", "a b"},
		{"level", `<p><pPr lvl="2"/><r><t>x</t></r></p>`, "x", "x"},
		{"empty", `<p><endParaRPr/></p>`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body xmlTextBody
			require.NoError(t, xml.Unmarshal([]byte(`<txBody>`+tt.xml+`</txBody>`), &body))
			require.Len(t, body.Paragraphs, 1)
			assert.Equal(t, tt.wantRuns, body.Paragraphs[0].runText())
			assert.Equal(t, tt.wantFull, body.Paragraphs[0].fullText())
		})
	}
}

func TestMasterType(t *testing.T) {
	for in, want := range map[string]string{
		"ctrTitle": "title",
		"title":    "title",
		"subTitle": "body",
		"obj":      "body",
		"pic":      "body",
		"dt":       "dt",
		"sldNum":   "sldNum",
	} {
		assert.Equal(t, want, masterType(in), in)
	}
}
