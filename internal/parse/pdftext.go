package parse

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/expenseflow/backend/internal/statement"
)

const (
	// MaxPDFPages caps how many pages are processed per document.
	MaxPDFPages = 100

	// layoutCharWidth approximates one character cell in points when
	// rebuilding layout-preserved text lines from positioned words.
	layoutCharWidth = 6.0

	// minCellGap is the horizontal whitespace (points) that separates two
	// table cells, as opposed to two words of the same cell.
	minCellGap = 10.0

	// lineYTolerance groups positioned fragments into the same visual line.
	lineYTolerance = 2.0
)

// pdfPage holds both views of one page: layout-preserved text lines for the
// regex/positional strategies, and cell rows for the generic table parser.
type pdfPage struct {
	lines    []string
	cellRows [][]string
}

// PDFDocument is the decoded, text-level representation of a statement PDF.
type PDFDocument struct {
	pages []pdfPage
}

// FirstPageText returns the text of page 1, used for template matching.
func (d *PDFDocument) FirstPageText() string {
	if len(d.pages) == 0 {
		return ""
	}
	return strings.Join(d.pages[0].lines, "\n")
}

// PageTexts returns one joined text blob per page.
func (d *PDFDocument) PageTexts() []string {
	texts := make([]string, len(d.pages))
	for i, p := range d.pages {
		texts[i] = strings.Join(p.lines, "\n")
	}
	return texts
}

// openPDF opens the PDF container, distinguishing the three caller-visible
// outcomes: readable, password needed, password wrong. The pdf library can
// panic on malformed streams, so the whole open is recover-guarded.
func openPDF(data []byte, password string) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pdf] recovered from panic while opening: %v", r)
			reader = nil
			err = statement.NewError(statement.ErrInvalidFileFormat, "malformed PDF stream: %v", r)
		}
	}()

	r := bytes.NewReader(data)
	size := int64(len(data))

	reader, err = pdf.NewReader(r, size)
	if err == nil {
		return reader, nil
	}
	if !errors.Is(err, pdf.ErrInvalidPassword) {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "open PDF")
	}

	if password == "" {
		return nil, statement.NewError(statement.ErrPDFPasswordRequired,
			"PDF is password-protected, please provide the password")
	}

	// NewReaderEncrypted keeps calling the password func until it returns
	// an empty string, so a wrong password must only be offered once.
	attempted := false
	reader, err = pdf.NewReaderEncrypted(r, size, func() string {
		if attempted {
			return ""
		}
		attempted = true
		return password
	})
	if err != nil {
		return nil, statement.WrapError(statement.ErrPDFPasswordIncorrect, err, "incorrect password")
	}
	return reader, nil
}

// extractDocument walks the pages sequentially and builds both text views.
// Per-page extraction failures are logged and skipped; a document where
// every page fails surfaces as InvalidFileFormat.
func extractDocument(reader *pdf.Reader) (*PDFDocument, error) {
	numPages := reader.NumPage()
	if numPages < 1 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "PDF has no pages")
	}
	if numPages > MaxPDFPages {
		numPages = MaxPDFPages
	}

	doc := &PDFDocument{}
	for i := 1; i <= numPages; i++ {
		page, err := extractPage(reader, i)
		if err != nil {
			log.Printf("[pdf] page %d extraction failed: %v", i, err)
			continue
		}
		doc.pages = append(doc.pages, page)
	}

	if len(doc.pages) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "no extractable text in PDF")
	}
	return doc, nil
}

// extractPage builds the line and cell-row views for one page.
// Two row sources are tried: the library's row grouping, and a raw content
// clustering pass tuned for wrapped text; whichever recovers more
// multi-cell rows wins (bank layouts defeat each one in turn).
func extractPage(reader *pdf.Reader, pageNum int) (page pdfPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic on page %d: %v", pageNum, r)
		}
	}()

	p := reader.Page(pageNum)
	if p.V.IsNull() {
		return pdfPage{}, fmt.Errorf("page %d is null", pageNum)
	}

	wordLines := clusterContentLines(p.Content())

	page.lines = layoutLines(wordLines)

	rowCells := cellRowsFromLibraryRows(p)
	contentCells := cellRowsFromWordLines(wordLines)
	if countMultiCellRows(contentCells) > countMultiCellRows(rowCells) {
		page.cellRows = contentCells
	} else {
		page.cellRows = rowCells
	}

	return page, nil
}

// pdfWord is a positioned run of text on a page.
type pdfWord struct {
	x, w     float64
	fontSize float64
	text     string
}

// clusterContentLines groups raw text fragments by Y coordinate into visual
// lines of positioned words, top of page first.
func clusterContentLines(content pdf.Content) [][]pdfWord {
	type lineKey struct {
		y     float64
		words []pdfWord
	}
	var lines []*lineKey

	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		var line *lineKey
		for _, l := range lines {
			if math.Abs(l.y-t.Y) <= lineYTolerance {
				line = l
				break
			}
		}
		if line == nil {
			line = &lineKey{y: t.Y}
			lines = append(lines, line)
		}
		line.words = append(line.words, pdfWord{x: t.X, w: t.W, fontSize: t.FontSize, text: t.S})
	}

	// PDF Y grows upward; render top-down.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([][]pdfWord, 0, len(lines))
	for _, l := range lines {
		sort.Slice(l.words, func(i, j int) bool { return l.words[i].x < l.words[j].x })
		out = append(out, mergeAdjacentFragments(l.words))
	}
	return out
}

// mergeAdjacentFragments joins text runs that sit close enough to be part
// of the same word or phrase, keeping genuine column gaps intact.
func mergeAdjacentFragments(words []pdfWord) []pdfWord {
	var merged []pdfWord
	for _, w := range words {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			gap := w.x - (prev.x + prev.w)
			joinGap := prev.fontSize * 0.3
			if joinGap <= 0 {
				joinGap = 1.5
			}
			if gap <= joinGap {
				prev.text += w.text
				prev.w = (w.x + w.w) - prev.x
				continue
			}
		}
		merged = append(merged, w)
	}
	return merged
}

// layoutLines renders word lines into layout-preserved strings by mapping
// point positions to character columns, like pdftotext -layout does.
func layoutLines(wordLines [][]pdfWord) []string {
	var lines []string
	for _, words := range wordLines {
		var b strings.Builder
		for _, w := range words {
			col := int(w.x / layoutCharWidth)
			if b.Len() < col {
				b.WriteString(strings.Repeat(" ", col-b.Len()))
			} else if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(w.text)
		}
		line := strings.TrimRight(b.String(), " ")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// cellRowsFromWordLines splits each word line into cells on large
// horizontal gaps.
func cellRowsFromWordLines(wordLines [][]pdfWord) [][]string {
	var rows [][]string
	for _, words := range wordLines {
		cells := splitWordsIntoCells(words)
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// cellRowsFromLibraryRows uses the pdf library's own row grouping.
func cellRowsFromLibraryRows(p pdf.Page) (rows [][]string) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
		}
	}()

	libRows, err := p.GetTextByRow()
	if err != nil {
		return nil
	}
	for _, row := range libRows {
		var words []pdfWord
		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			words = append(words, pdfWord{x: t.X, w: t.W, fontSize: t.FontSize, text: t.S})
		}
		sort.Slice(words, func(i, j int) bool { return words[i].x < words[j].x })
		cells := splitWordsIntoCells(mergeAdjacentFragments(words))
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// splitWordsIntoCells groups a sorted word line into cells: consecutive
// words separated by less than minCellGap belong to the same cell.
func splitWordsIntoCells(words []pdfWord) []string {
	var cells []string
	var cur strings.Builder
	var prevEnd float64

	for i, w := range words {
		if i > 0 {
			gap := w.x - prevEnd
			if gap > minCellGap {
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			} else {
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(w.text)
		prevEnd = w.x + w.w
	}
	if cur.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}

	var nonEmpty []string
	for _, c := range cells {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return nonEmpty
}

func countMultiCellRows(rows [][]string) int {
	count := 0
	for _, r := range rows {
		if len(r) >= 2 {
			count++
		}
	}
	return count
}
