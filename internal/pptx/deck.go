package pptx

// Deck is the text content of a presentation, slides in show order.
type Deck struct {
	Slides []Slide
}

// Slide is one slide's extracted content.
type Slide struct {
	Number int // 1-based position in the show
	// Title is the text of the title placeholder, empty if there is none.
	Title string
	// Shapes are sorted into reading order: top to bottom, then left to
	// right. Shapes at the same spot keep their document order.
	Shapes []Shape
	// Notes holds the speaker notes paragraphs, nil without a notes page.
	Notes []Paragraph
}

// ShapeKind classifies a top-level shape.
type ShapeKind int

const (
	KindText ShapeKind = iota
	KindTable
	KindPicture
	KindPlaceholderPicture
	KindGroup
	KindConnector
	KindChart
	KindEmbeddedObject
	KindLinkedObject
	// KindOther is a graphic frame with no recognised content, e.g. SmartArt.
	KindOther
)

// objectLabels names the non-text shapes the way PowerPoint's shape type
// enumeration does.
var objectLabels = map[ShapeKind]string{
	KindPicture:            "PICTURE (13)",
	KindPlaceholderPicture: "PLACEHOLDER (14)",
	KindGroup:              "GROUP (6)",
	KindConnector:          "LINE (9)",
	KindChart:              "CHART (3)",
	KindEmbeddedObject:     "EMBEDDED_OLE_OBJECT (7)",
	KindLinkedObject:       "LINKED_OLE_OBJECT (10)",
}

// Shape is a top-level shape on a slide. Positions are in EMU.
type Shape struct {
	Kind ShapeKind
	Top  int64
	Left int64

	Paragraphs []Paragraph // KindText
	Rows       [][]string  // KindTable, cell text with paragraphs joined by spaces
}

// Paragraph is one paragraph of a text frame.
type Paragraph struct {
	Level int // outline level, 0 for top level
	Text  string
}
