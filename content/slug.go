package content

import (
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify lower-cases title and joins its whitespace separated words with
// hyphens. Punctuation is kept.
func Slugify(title string) string {
	return strings.Join(strings.Fields(cases.Lower(language.Und).String(title)), "-")
}

// BlobKey namespaces an uploaded file under prefix as <name>-<unix millis>.
// A non-empty nonce is appended so uploads of the same name in the same
// millisecond stay distinct.
func BlobKey(prefix, name string, at time.Time, nonce string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	key := name + "-" + strconv.FormatInt(at.UnixMilli(), 10)
	if nonce != "" {
		key += "-" + nonce
	}
	if prefix == "" {
		return key
	}
	return strings.Trim(prefix, "/") + "/" + key
}
