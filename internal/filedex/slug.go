package filedex

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugBase = 64

// Slugify turns a filename into a URL-safe name: diacritics folded, lowercase,
// runs of anything outside [a-z0-9] collapsed to a single '-'. The extension
// is kept (lowercased). "Résumé (Final).PDF" becomes "resume-final.pdf".
func Slugify(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, `\`, "/")))
	if name == "." || name == "/" {
		name = ""
	}

	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		// ".env" style names: treat the whole thing as the base.
		base, ext = strings.TrimPrefix(ext, "."), ""
	}

	base = slugPart(base, maxSlugBase)
	if base == "" {
		base = "file"
	}
	ext = slugPart(strings.TrimPrefix(ext, "."), 16)
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// SlugifyTitle is Slugify for free text without extension handling.
func SlugifyTitle(title string) string {
	return slugPart(title, maxSlugBase)
}

func slugPart(s string, limit int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}

	var b strings.Builder
	dash := false
	count := 0
	for _, r := range strings.ToLower(s) {
		if count >= limit {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			count++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			count++
		}
	}
	return strings.Trim(b.String(), "-")
}

// withSuffix inserts "-n" before the extension: ("report.pdf", 2) -> "report-2.pdf".
func withSuffix(slug string, n int) string {
	ext := path.Ext(slug)
	return strings.TrimSuffix(slug, ext) + "-" + strconv.Itoa(n) + ext
}

// Unique returns slug if taken reports false for it, otherwise the first of
// slug-2, slug-3, ... that is free.
func Unique(slug string, taken func(string) bool) string {
	if !taken(slug) {
		return slug
	}
	for n := 2; ; n++ {
		candidate := withSuffix(slug, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
