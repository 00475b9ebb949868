// Copyright 2024 Wikimedia Foundation

package mycnf

import (
	"strings"
	"unicode"
)

// cleanValue turns a raw stored value into the value mysql would see.
// Inline comments are removed first, then one layer of wrapping quotes.
// Comment detection depends on the original quote positions, so the order
// of the two steps cannot be swapped.
func cleanValue(val string) string {
	if strings.Contains(val, "#") {
		val = stripInlineComment(val)
	}
	return stripQuotes(val)
}

// stripQuotes removes one layer of matching single or double quotes.
// Nested identical quote chars are not stripped recursively.
func stripQuotes(val string) string {
	if len(val) < 2 {
		return val
	}
	if val[0] != val[len(val)-1] {
		return val
	}
	if val[0] != '\'' && val[0] != '"' {
		return val
	}
	return val[1 : len(val)-1]
}

// stripInlineComment handles mysql's ad hoc comment rules for a value known
// to contain '#'. An unquoted value is truncated at the first '#'. A value
// that starts with a quote char which re-occurs later keeps any '#' up to
// the closing quote; only a '#' at or after the closing quote starts a
// comment.
func stripInlineComment(val string) string {
	q := val[0]
	if (q != '\'' && q != '"') || strings.Count(val, string(q)) < 2 {
		cut := val[:strings.IndexByte(val, '#')]
		return strings.TrimRightFunc(cut, unicode.IsSpace)
	}
	closing := strings.IndexByte(val[1:], q) + 1
	if i := strings.IndexByte(val[closing:], '#'); i >= 0 {
		cut := val[:closing+i]
		return strings.TrimRightFunc(cut, unicode.IsSpace)
	}
	return val
}
