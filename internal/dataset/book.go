package dataset

// Sheet is one titled Dataset inside a Book.
type Sheet struct {
	Title string
	Data  *Dataset
}

// Book is an ordered collection of titled Datasets, exported as a
// multi-sheet workbook.
type Book struct {
	Title  string
	Sheets []Sheet
}

// NewBook returns an empty Book.
func NewBook(title string) *Book { return &Book{Title: title} }

// Add appends a sheet.
func (b *Book) Add(title string, d *Dataset) {
	b.Sheets = append(b.Sheets, Sheet{Title: title, Data: d})
}

// Len returns the number of sheets.
func (b *Book) Len() int { return len(b.Sheets) }
