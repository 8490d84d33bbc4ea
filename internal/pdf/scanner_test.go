package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/extraction"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/wrapper"
)

// fakeDocument serves prepared pages; a nil entry is a page with broken structure
type fakeDocument struct {
	pages   []*spans.Page
	loaded  []int
	pageErr map[int]error
	closed  bool
}

func (d *fakeDocument) PageCount() (int, error) {
	if d.closed {
		return 0, wrapper.ErrDocumentClosed
	}
	return len(d.pages), nil
}

func (d *fakeDocument) Page(index int) (spans.StructuredPage, error) {
	d.loaded = append(d.loaded, index)
	if err, ok := d.pageErr[index]; ok {
		return nil, err
	}
	if index < 0 || index >= len(d.pages) {
		return nil, wrapper.ErrInvalidPage
	}
	if d.pages[index] == nil {
		// a text block without lines fails structure validation
		return &spans.Page{Index: index, BlockList: []spans.Block{{Kind: spans.BlockText}}}, nil
	}
	return d.pages[index], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func page(index int, lines ...[]spans.Span) *spans.Page {
	block := spans.Block{Kind: spans.BlockText, Lines: []spans.Line{}}
	for _, l := range lines {
		block.Lines = append(block.Lines, spans.Line{Spans: l})
	}
	return &spans.Page{Index: index, BlockList: []spans.Block{block}}
}

func heading(text string, size float64) spans.Span {
	return spans.Span{Text: text, Font: "Times-Bold", Size: size}
}

func text(s string) spans.Span {
	return spans.Span{Text: s, Font: "Times-Roman", Size: 10}
}

func blank(index int) *spans.Page {
	return page(index, []spans.Span{text("Lorem ipsum")})
}

func collect(t *testing.T, s *Scanner, start, end int) []Result {
	t.Helper()
	seq, err := s.Scan(context.Background(), start, end)
	require.NoError(t, err)

	var results []Result
	for r, err := range seq {
		require.NoError(t, err)
		results = append(results, r)
	}
	return results
}

func TestScanner_HeaderFromPreviousPage(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		blank(1),
		page(2, []spans.Span{heading("Deep ", 14), heading("Learning", 14)}),
		page(3,
			[]spans.Span{heading("Abstract", 12)},
			[]spans.Span{text("We study things.")},
			[]spans.Span{text("Results follow.")},
		),
		blank(4),
	}}

	results := collect(t, NewScanner(doc), 1, 0)
	assert.Equal(t, []Result{{
		Header:     "Deep Learning",
		PageNumber: 3,
		Keyword:    "abstract",
		Abstract:   "We study things. Results follow.",
	}}, results)
}

func TestScanner_NoHitsYieldsNothing(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{blank(0), blank(1), blank(2)}}
	results := collect(t, NewScanner(doc), 1, 0)
	assert.Empty(t, results)
}

func TestScanner_SummaryKeywordWithoutHeading(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		page(1,
			[]spans.Span{text("Executive Summary")},
			[]spans.Span{text("Short text.")},
		),
	}}

	results := collect(t, NewScanner(doc), 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "", results[0].Header)
	assert.Equal(t, "summary", results[0].Keyword)
	assert.Equal(t, 1, results[0].PageNumber)
	// the reference style is locked on the first span after the keyword line
	assert.Equal(t, "Short text.", results[0].Abstract)
}

func TestScanner_RangeErrors(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{blank(0), blank(1), blank(2), blank(3)}}

	tests := []struct {
		name       string
		start, end int
	}{
		{name: "start_zero", start: 0, end: 0},
		{name: "start_at_page_count", start: 4, end: 0},
		{name: "start_equals_end", start: 2, end: 2},
		{name: "start_after_end", start: 3, end: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc.loaded = nil
			seq, err := NewScanner(doc).Scan(context.Background(), tt.start, tt.end)
			require.Error(t, err)
			assert.Nil(t, seq)
			assert.True(t, pdferrors.IsInvalidRange(err))
			assert.Empty(t, doc.loaded, "no page may be loaded before the range is valid")
		})
	}
}

func TestScanner_EndClampedToPageCount(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		page(1, []spans.Span{text("abstract")}, []spans.Span{text("Last page.")}),
	}}

	s := NewScanner(doc)
	results := collect(t, s, 1, 50)
	require.Len(t, results, 1)
	assert.Equal(t, 1, s.Range().Start)
	assert.Equal(t, 2, s.Range().End)
}

func TestScanner_EndIsExclusive(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		blank(1),
		page(2, []spans.Span{text("abstract")}, []spans.Span{text("Not scanned.")}),
	}}

	results := collect(t, NewScanner(doc), 1, 2)
	assert.Empty(t, results)
	assert.NotContains(t, doc.loaded, 2)
}

func TestScanner_StructureErrorOnAbstractPageSkips(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		nil,
		blank(2),
		page(3, []spans.Span{text("Abstract")}, []spans.Span{text("Still found.")}),
	}}

	s := NewScanner(doc)
	results := collect(t, s, 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].PageNumber)
	assert.Equal(t, []int{1}, s.Skipped())
}

func TestScanner_StructureErrorOnHeadingPageKeepsResult(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{
		blank(0),
		nil,
		page(2, []spans.Span{text("Abstract")}, []spans.Span{text("Body.")}),
	}}

	results := collect(t, NewScanner(doc), 2, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "", results[0].Header)
	assert.Equal(t, "Body.", results[0].Abstract)
}

func TestScanner_PageLoadStructureErrorSkips(t *testing.T) {
	doc := &fakeDocument{
		pages: []*spans.Page{blank(0), blank(1)},
		pageErr: map[int]error{
			1: pdferrors.NewPDFError(pdferrors.ErrorTypeStructure, "malformed page content"),
		},
	}

	s := NewScanner(doc)
	assert.Empty(t, collect(t, s, 1, 0))
	assert.Equal(t, []int{1}, s.Skipped())
}

func TestScanner_OtherErrorsStopScan(t *testing.T) {
	boom := errors.New("disk gone")
	doc := &fakeDocument{
		pages:   []*spans.Page{blank(0), blank(1), blank(2)},
		pageErr: map[int]error{1: boom},
	}

	seq, err := NewScanner(doc).Scan(context.Background(), 1, 0)
	require.NoError(t, err)

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.NotContains(t, doc.loaded, 2)
}

func TestScanner_ContextCancelled(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{blank(0), blank(1), blank(2)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq, err := NewScanner(doc).Scan(ctx, 1, 0)
	require.NoError(t, err)

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.Empty(t, doc.loaded)
}

func TestScanner_StopsWhenConsumerBreaks(t *testing.T) {
	hit := func(i int) *spans.Page {
		return page(i, []spans.Span{text("abstract")}, []spans.Span{text("x")})
	}
	doc := &fakeDocument{pages: []*spans.Page{blank(0), hit(1), hit(2), hit(3)}}

	seq, err := NewScanner(doc).Scan(context.Background(), 1, 0)
	require.NoError(t, err)

	for r, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, 1, r.PageNumber)
		break
	}
	assert.NotContains(t, doc.loaded, 2)
}

func TestScanner_ClosedDocument(t *testing.T) {
	doc := &fakeDocument{pages: []*spans.Page{blank(0), blank(1)}}
	require.NoError(t, doc.Close())

	_, err := NewScanner(doc).Scan(context.Background(), 1, 0)
	assert.Error(t, err)
}

func TestScanner_Options(t *testing.T) {
	headingPage := page(0,
		[]spans.Span{heading("a", 12), heading("b", 12)},
		[]spans.Span{heading("c", 12), heading("d", 12)},
	)
	abstractPage := page(1, []spans.Span{text("Résumé")}, []spans.Span{text("Texte.")})

	doc := &fakeDocument{pages: []*spans.Page{headingPage, abstractPage}}
	s := NewScanner(doc,
		WithMergeMode(extraction.MergeLegacyStep),
		WithKeywords("Résumé"),
	)

	results := collect(t, s, 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "a b d", results[0].Header)
	assert.Equal(t, "résumé", results[0].Keyword)
	assert.Equal(t, "Texte.", results[0].Abstract)
}
