package vault

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string
// (e.g. "José Muñoz" -> "Jose Munoz").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// slugifyName turns a display name into a filesystem-safe directory token:
// no diacritics, lowercase, runs of non-alphanumerics collapsed to dashes.
func slugifyName(name string) string {
	name = strings.ToLower(removeDiacritics(name))

	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// dirName builds the per-user directory name, "{userID}_{slug}".
func dirName(userID int, userName string) string {
	return fmt.Sprintf("%d_%s", userID, slugifyName(userName))
}

// parseLabel extracts the user id from a per-user directory name. The
// leading underscore-delimited token must be an integer; anything else in
// the dataset root is a corrupt layout and training fails fast rather than
// silently skipping it.
func parseLabel(dir string) (int, error) {
	token, _, _ := strings.Cut(dir, "_")
	label, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("dataset directory %q: leading token is not a user id", dir)
	}
	return label, nil
}
