package transform

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"reports/internal/dataset"
)

func init() {
	Register("str_if_int", StrIfInt)
	Register("int_if_str", IntIfStr)
	Register("upper", stringFunc(strings.ToUpper))
	Register("lower", stringFunc(strings.ToLower))
	Register("trim", stringFunc(strings.TrimSpace))
	Register("normalize", stringFunc(Normalize))
	Register("ascii", stringFunc(FoldASCII))

	RegisterPredicate("is_numeric", dataset.IsNumeric)
	RegisterPredicate("is_null", func(v any) bool { return v == nil })
	RegisterPredicate("is_empty", func(v any) bool { return v == nil || dataset.Format(v) == "" })
}

func stringFunc(f func(string) string) func(any) any {
	return func(v any) any {
		if s, ok := v.(string); ok {
			return f(s)
		}
		return v
	}
}

// StrIfInt renders integers as decimal strings and leaves other values alone.
func StrIfInt(v any) any {
	if n, ok := dataset.Normalize(v).(int64); ok {
		return strconv.FormatInt(n, 10)
	}
	return v
}

// IntIfStr parses strings holding a base-10 integer and leaves other values
// alone.
func IntIfStr(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n
	}
	return v
}

// Normalize trims surrounding whitespace and replaces non-breaking spaces,
// including the mis-decoded "Â " form, with plain spaces.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00c2\u00a0", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

// FoldASCII strips combining marks, so "Città" becomes "Citta".
func FoldASCII(s string) string {
	t := xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := xtransform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
