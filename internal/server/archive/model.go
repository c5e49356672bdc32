package archive

import (
	"encoding/json"
	"time"
)

// Item content types.
const (
	TypeText    = "text"
	TypePicture = "picture"
)

// Extra is the item's extra-metadata namespace: a free-form map of JSON
// values keyed by extension. The sign-off workflow owns the
// "publish_sign_off" key; author profiles store their "profile_*" fields
// here as well.
type Extra map[string]json.RawMessage

// String returns the extra value under key decoded as a JSON string, or ""
// when the key is absent or not a string.
func (e Extra) String(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Set stores v marshalled as JSON under key.
func (e Extra) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e[key] = raw
	return nil
}

// Author is an author reference embedded on an item. Beyond the fixed CMS
// fields it carries the flattened public profile fields copied on by
// enrichment; those round-trip through Fields so unknown keys survive.
type Author struct {
	Name   string
	Code   string
	Role   string
	URI    string
	Parent string
	Fields map[string]string
}

func (a Author) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(a.Fields)+5)
	for k, v := range a.Fields {
		m[k] = v
	}
	if a.Name != "" {
		m["name"] = a.Name
	}
	if a.Code != "" {
		m["code"] = a.Code
	}
	if a.Role != "" {
		m["role"] = a.Role
	}
	if a.URI != "" {
		m["uri"] = a.URI
	}
	if a.Parent != "" {
		m["parent"] = a.Parent
	}
	return json.Marshal(m)
}

func (a *Author) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "name":
			a.Name = s
		case "code":
			a.Code = s
		case "role":
			a.Role = s
		case "uri":
			a.URI = s
		case "parent":
			a.Parent = s
		default:
			if a.Fields == nil {
				a.Fields = map[string]string{}
			}
			a.Fields[k] = s
		}
	}
	return nil
}

// SetField records an enriched public profile field on the author.
func (a *Author) SetField(key, value string) {
	if a.Fields == nil {
		a.Fields = map[string]string{}
	}
	a.Fields[key] = value
}

// Rendition is one rendered size of an associated media asset.
type Rendition struct {
	Href     string `json:"href"`
	Mimetype string `json:"mimetype,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Association is a media item attached to an article body.
type Association struct {
	Type       string                `json:"type,omitempty"`
	Renditions map[string]*Rendition `json:"renditions,omitempty"`
}

// Item is an article record in the archive.
type Item struct {
	ID             string                  `json:"_id"`
	GUID           string                  `json:"guid"`
	Type           string                  `json:"type"`
	Headline       string                  `json:"headline"`
	Slugline       string                  `json:"slugline"`
	Language       string                  `json:"language"`
	Version        int                     `json:"version"`
	BodyHTML       string                  `json:"body_html"`
	FirstCreated   time.Time               `json:"firstcreated"`
	VersionCreated time.Time               `json:"versioncreated"`
	FirstPublished *time.Time              `json:"firstpublished,omitempty"`
	Embargo        *time.Time              `json:"embargo,omitempty"`
	Authors        []Author                `json:"authors,omitempty"`
	Associations   map[string]*Association `json:"associations,omitempty"`
	Extra          Extra                   `json:"extra,omitempty"`
}

// Name returns the item's headline, falling back to the slugline.
func (i *Item) Name() string {
	if i.Headline != "" {
		return i.Headline
	}
	return i.Slugline
}

// PublishDate is the embargo time when one is set, otherwise the time the
// current version was created.
func (i *Item) PublishDate() time.Time {
	if i.Embargo != nil {
		return *i.Embargo
	}
	return i.VersionCreated
}

// Clone returns a deep copy safe for per-request mutation (asset URL
// tokenization rewrites hrefs on the copy, never on the stored item).
func (i *Item) Clone() *Item {
	out := *i
	if i.Authors != nil {
		out.Authors = make([]Author, len(i.Authors))
		copy(out.Authors, i.Authors)
		for n, a := range i.Authors {
			if a.Fields != nil {
				fields := make(map[string]string, len(a.Fields))
				for k, v := range a.Fields {
					fields[k] = v
				}
				out.Authors[n].Fields = fields
			}
		}
	}
	if i.Associations != nil {
		out.Associations = make(map[string]*Association, len(i.Associations))
		for key, assoc := range i.Associations {
			if assoc == nil {
				out.Associations[key] = nil
				continue
			}
			copied := &Association{Type: assoc.Type}
			if assoc.Renditions != nil {
				copied.Renditions = make(map[string]*Rendition, len(assoc.Renditions))
				for size, r := range assoc.Renditions {
					if r == nil {
						copied.Renditions[size] = nil
						continue
					}
					rc := *r
					copied.Renditions[size] = &rc
				}
			}
			out.Associations[key] = copied
		}
	}
	if i.Extra != nil {
		out.Extra = make(Extra, len(i.Extra))
		for k, v := range i.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}
