package storage

// ReadOptions are the knobs a Read call understands. Each format ignores the
// ones that do not apply to it.
type ReadOptions struct {
	// Headers names the columns of the result, replacing any header row.
	Headers []string

	// Pattern is the regular expression a log reader extracts groups with.
	Pattern string

	// Delimiter separates CSV fields. Zero means ','.
	Delimiter rune

	// NoHeaderRow makes a CSV or spreadsheet reader treat the first row as data.
	NoHeaderRow bool

	// Sheet selects a spreadsheet sheet by name. Empty means the first one.
	Sheet string

	// Encoding is an IANA charset name for text inputs. Empty means UTF-8.
	Encoding string
}

// ReadOption configures a Read call.
type ReadOption func(*ReadOptions)

// WithHeaders sets the result column names.
func WithHeaders(h ...string) ReadOption {
	return func(o *ReadOptions) { o.Headers = h }
}

// WithPattern sets the log extraction pattern.
func WithPattern(p string) ReadOption {
	return func(o *ReadOptions) { o.Pattern = p }
}

// WithDelimiter sets the CSV field separator.
func WithDelimiter(r rune) ReadOption {
	return func(o *ReadOptions) { o.Delimiter = r }
}

// NoHeaderRow treats the first CSV or spreadsheet row as data.
func NoHeaderRow() ReadOption {
	return func(o *ReadOptions) { o.NoHeaderRow = true }
}

// WithSheet selects a spreadsheet sheet.
func WithSheet(name string) ReadOption {
	return func(o *ReadOptions) { o.Sheet = name }
}

// WithEncoding decodes text input from the named charset.
func WithEncoding(name string) ReadOption {
	return func(o *ReadOptions) { o.Encoding = name }
}

// ApplyReadOptions folds opts into a ReadOptions value.
func ApplyReadOptions(opts ...ReadOption) ReadOptions {
	var o ReadOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
