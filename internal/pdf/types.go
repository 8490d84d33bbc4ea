package pdf

// Result pairs an abstract found on one page with the heading of the page
// before it. PageNumber is the 0-based index of the abstract page.
type Result struct {
	Header     string `json:"header"`
	PageNumber int    `json:"page_number"`
	Keyword    string `json:"keyword"`
	Abstract   string `json:"abstract"`
}

// Request Types

// PDFFindAbstractsRequest represents a request to scan a PDF for abstracts
type PDFFindAbstractsRequest struct {
	Path      string `json:"path"`
	StartPage int    `json:"start_page,omitempty"`
	EndPage   int    `json:"end_page,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// PDFFindAbstractsResult represents the result of a full abstract scan
type PDFFindAbstractsResult struct {
	Path         string   `json:"path"`
	Pages        int      `json:"pages"`
	StartPage    int      `json:"start_page"`
	EndPage      int      `json:"end_page"`
	Results      []Result `json:"results"`
	SkippedPages []int    `json:"skipped_pages,omitempty"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Pages     int    `json:"pages,omitempty"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Message   string `json:"message,omitempty"`
}
