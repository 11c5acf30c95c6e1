package seo

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MetaLength is the usual cap of a meta description.
const MetaLength = 160

// MetaText joins the non-empty parts, or uses fallback when there are none,
// strips markup, collapses whitespace and cuts the result to max characters.
func MetaText(fallback string, max int, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	txt := strings.TrimSpace(strings.Join(kept, " "))
	if txt == "" {
		txt = fallback
	}

	txt = strings.Join(strings.Fields(StripTags(txt)), " ")

	if r := []rune(txt); len(r) > max {
		txt = strings.TrimRightFunc(string(r[:max]), unicode.IsSpace)
	}
	return txt
}

// StripTags drops every tag of s and keeps its text, with entities decoded.
func StripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is kept.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
