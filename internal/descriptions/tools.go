package descriptions

import "sort"

// Tool names exposed over MCP
const (
	ToolFindAbstracts = "pdf_find_abstracts"
	ToolValidateFile  = "pdf_validate_file"
)

// Tool descriptions with practical examples and use cases

const (
	PDFFindAbstractsDescription = `Find abstract sections in a PDF and pair each with the heading of the page before it.

**When to use:** Indexing proceedings, collections or theses where every paper starts with a title page followed by a page whose text contains "Abstract" or "Summary".

**How it works:** Each page in the range is searched for a trigger keyword. The text after the keyword is kept while its font, size and color stay the same as the first span after the keyword. The bold runs of the previous page are merged into the heading.

**Examples:**
• Whole document: "Find abstracts in proceedings-2023.pdf"
• Page range: "Find abstracts in thesis.pdf from page 4 up to page 20"

**Output:** One record per abstract: heading, "Page: N" (0-based page index), the matched keyword and the abstract text, separated by blank lines.

**Parameters:** start_page is the first page index examined (at least 1, because the heading comes from the page before). end_page is exclusive; 0 or omitted means the last page.

**Best practices:** Run pdf_validate_file first on unknown files. Scanned PDFs without a text layer yield no results.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before scanning.

**When to use:** Before running pdf_find_abstracts on a file you have not scanned before.

**Why it's useful:** Parses the cross-reference structure, reports the page count, PDF version and whether the document is encrypted, and catches corrupted files early.

**Examples:**
• "Check paper.pdf is a readable PDF"
• "How many pages does proceedings.pdf have?"

**Best practices:** Paths are resolved inside the configured PDF directory. Relative paths are joined onto it.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolFindAbstracts: PDFFindAbstractsDescription,
	ToolValidateFile:  PDFValidateFileDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all available tools in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
