package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	UntitledLabel      = "Untitled"
	UncategorizedLabel = "Uncategorized"
	UnknownYearLabel   = "Unknown"
	NoDateLabel        = "No date"
)

// Record is a single document from any content collection. Optional fields are
// pointers; the accessor methods apply the defaulting rules used by listings.
type Record struct {
	ID         string `json:"id"`
	Collection string `json:"collection,omitempty"`

	Title    *string `json:"title,omitempty"`
	Name     *string `json:"name,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	Category *string `json:"category,omitempty"`
	Date     *string `json:"date,omitempty"`

	ImageURL *string  `json:"imageUrl,omitempty"`
	Images   []string `json:"images,omitempty"`

	Content     *string `json:"content,omitempty"`
	Description *string `json:"description,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Review      *string `json:"review,omitempty"`

	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Email      *string `json:"email,omitempty"`
	Message    *string `json:"message,omitempty"`
	Amount     *string `json:"amount,omitempty"`
	Slug       *string `json:"slug,omitempty"`

	CreatedAt   *string `json:"createdAt,omitempty"`
	SubmittedAt *string `json:"submittedAt,omitempty"`
}

// String returns a pointer to s, or nil when s is blank.
func String(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// RawTitle is the title, falling back to the name, without a display label.
func (r Record) RawTitle() string {
	if t := value(r.Title); t != "" {
		return t
	}
	return value(r.Name)
}

func (r Record) DisplayTitle() string {
	if t := r.RawTitle(); t != "" {
		return t
	}
	return UntitledLabel
}

func (r Record) TopicOrDefault() string {
	if t := value(r.Topic); t != "" {
		return t
	}
	if c := value(r.Category); c != "" {
		return c
	}
	return UncategorizedLabel
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate accepts the ISO-8601 variants the admin forms and stores produce.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r Record) ParsedDate() (time.Time, bool) {
	return ParseDate(value(r.Date))
}

// Year returns the calendar year of Date. ok is false for absent or
// unparseable dates.
func (r Record) Year() (year string, ok bool) {
	t, ok := r.ParsedDate()
	if !ok {
		return "", false
	}
	return t.Format("2006"), true
}

func (r Record) YearOrDefault() string {
	if y, ok := r.Year(); ok {
		return y
	}
	return UnknownYearLabel
}

// FormattedDate never fails; bad input degrades to NoDateLabel.
func (r Record) FormattedDate() string {
	t, ok := r.ParsedDate()
	if !ok {
		return NoDateLabel
	}
	return t.Format("January 2, 2006")
}

// BlobURLs lists every uploaded file the record points at.
func (r Record) BlobURLs() []string {
	var urls []string
	if u := value(r.ImageURL); u != "" {
		urls = append(urls, u)
	}
	for _, u := range r.Images {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Excerpt returns at most n runes of the content's text, markup removed.
func (r Record) Excerpt(n int) string {
	text := PlainText(value(r.Content))
	if text == "" {
		text = PlainText(value(r.Description))
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// PlainText strips HTML tags and collapses whitespace.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(tokenizer.Text())
			sb.WriteString(" ")
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteString(" ")
		}
	}
}
