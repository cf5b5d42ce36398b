package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"
)

// Collection describes one content collection in the document store.
type Collection struct {
	Name       string // store collection name
	Entity     string // human readable singular, used in messages
	BlobPrefix string // namespace for uploaded files
	SlugPrefix string // route prefix for derived slugs, empty when the collection has no pages
	Listing    string // route of the public listing, if any
}

var (
	Blogs        = Collection{Name: "blogs", Entity: "Blog post", BlobPrefix: "blogs", SlugPrefix: "/blog/", Listing: "/blog"}
	Programs     = Collection{Name: "programs", Entity: "Program", BlobPrefix: "program-images", SlugPrefix: "/programs/", Listing: "/programs"}
	Leadership   = Collection{Name: "leadership", Entity: "Leadership profile", Listing: "/about"}
	Testimonials = Collection{Name: "testimonials", Entity: "Testimonial", BlobPrefix: "testimonials", Listing: "/"}
	Donations    = Collection{Name: "donations", Entity: "Donation", BlobPrefix: "donations"}
	Contacts     = Collection{Name: "contacts", Entity: "Message"}
)

// Collections lists every known collection.
var Collections = []Collection{Blogs, Programs, Leadership, Testimonials, Donations, Contacts}

// ManagedCollections are the ones shown on the admin dashboard. Donations and
// contacts come in through the public forms; staff review and remove them here.
var ManagedCollections = []Collection{Blogs, Leadership, Programs, Testimonials, Donations, Contacts}

func LookupCollection(name string) (Collection, bool) {
	for _, c := range Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Fields flattens the record into the document stored for it. ID and
// Collection are addressing data and are not part of the document.
func (r Record) Fields() (map[string]any, error) {
	r.ID = ""
	r.Collection = ""

	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	delete(fields, "id")
	delete(fields, "collection")
	return fields, nil
}

// RecordFromFields rebuilds a record from a stored document. Unknown fields
// are ignored. Values of an unexpected type are coerced by normalizeFields,
// so one odd field never hides the whole record.
func RecordFromFields(collection, id string, fields map[string]any) (Record, error) {
	raw, err := json.Marshal(normalizeFields(fields))
	if err != nil {
		return Record{}, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}

	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	r.ID = id
	r.Collection = collection
	return r, nil
}

// timestampFields hold dates; numbers in them are epoch seconds or millis.
var timestampFields = map[string]bool{"date": true, "createdAt": true, "submittedAt": true}

// normalizeFields maps every stored value onto the string shape Record
// declares. Numbers, booleans, time values and {seconds, nanoseconds}
// timestamp maps become strings; anything else unusable is dropped and the
// field falls back to its default.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, v := range fields {
		if key == "images" {
			if images := stringList(v); len(images) > 0 {
				out[key] = images
			}
			continue
		}
		if s, ok := scalarString(v, timestampFields[key]); ok {
			out[key] = s
		}
	}
	return out
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func scalarString(v any, timestamp bool) (string, bool) {
	switch x := v.(type) {
	case nil, []any, []string:
		return "", false
	case string:
		return x, true
	case time.Time:
		return x.UTC().Format(time.RFC3339), true
	case map[string]any:
		t, ok := timestampMap(x)
		if !ok {
			return "", false
		}
		return t.UTC().Format(time.RFC3339), true
	case bool:
		if timestamp {
			return "", false
		}
	}

	if timestamp {
		if f, err := cast.ToFloat64E(v); err == nil {
			return epochString(f), true
		}
	}
	s, err := cast.ToStringE(v)
	return s, err == nil
}

// epochString reads f as epoch millis, or epoch seconds when too small to
// be millis.
func epochString(f float64) string {
	if math.Abs(f) < 1e11 {
		f *= 1000
	}
	return time.UnixMilli(int64(f)).UTC().Format(time.RFC3339)
}

// timestampMap reads {seconds, nanoseconds} and {_seconds, _nanoseconds}.
func timestampMap(m map[string]any) (time.Time, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		raw, ok := m[keys[0]]
		if !ok || raw == nil {
			continue
		}
		secs, err := cast.ToInt64E(raw)
		if err != nil {
			continue
		}
		nanos, _ := cast.ToInt64E(m[keys[1]])
		return time.Unix(secs, nanos), true
	}
	return time.Time{}, false
}
