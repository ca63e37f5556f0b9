package feed

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const idPrefix = "job-"

var (
	nonAlnum  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	spaceRuns = regexp.MustCompile(`[\s\x{000B}\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	nonSlug   = regexp.MustCompile(`[^a-z0-9-]`)
)

// StableJobID derives the cross-fetch identity of a posting.
//
// With a non-blank URL the id is "job-" followed by the base64 encoding of
// the URL with every non-alphanumeric character removed. Each character is
// encoded as a single Latin-1 byte, so ids match those produced by clients
// that used a browser btoa(); a URL containing characters outside Latin-1
// cannot be encoded that way and takes the fallback.
//
// The fallback is "job-" followed by a slug of company, title and the
// record's position in the batch, which keeps ids unique within one fetch.
func StableJobID(rawURL, company, title string, index int) string {
	if strings.TrimSpace(rawURL) != "" {
		if b, ok := latin1(rawURL); ok {
			return idPrefix + nonAlnum.ReplaceAllString(base64.StdEncoding.EncodeToString(b), "")
		}
	}
	return idPrefix + slug(company, title, index)
}

func slug(company, title string, index int) string {
	key := fmt.Sprintf("%s-%s-%d", orDefault(company, "company"), orDefault(title, "title"), index)
	key = strings.ToLower(key)
	key = spaceRuns.ReplaceAllString(key, "-")
	return nonSlug.ReplaceAllString(key, "")
}

func latin1(s string) ([]byte, bool) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, false
		}
		b = append(b, byte(r))
	}
	return b, true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
