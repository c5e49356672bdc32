package profiles

import (
	"encoding/json"
	"strings"

	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

// qcodeValue is the shape of vocabulary-backed profile values: a coded
// entry with a display name, optionally carrying a region (countries).
type qcodeValue struct {
	Name   string `json:"name"`
	QCode  string `json:"qcode"`
	Region string `json:"region"`
}

// FlattenProfileFields projects the public "profile_*" keys of an item's
// extra metadata into a flat map. The profile_ prefix is stripped
// (profile_id stays verbatim) and vocabulary dict values resolve to the
// display name, falling back to the qcode. A country value carrying a
// region adds a separate "region" key.
func FlattenProfileFields(extra archive.Extra, v *vocab.Vocab) map[string]string {
	out := map[string]string{}
	for key, raw := range extra {
		if !v.IsPublicField(key) {
			continue
		}
		if key == "profile_id" {
			out["profile_id"] = decodeString(raw)
			continue
		}

		flatKey := strings.TrimPrefix(key, "profile_")

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[flatKey] = s
			continue
		}

		var qv qcodeValue
		if err := json.Unmarshal(raw, &qv); err != nil {
			continue
		}
		if qv.Name != "" {
			out[flatKey] = qv.Name
		} else {
			out[flatKey] = qv.QCode
		}
		if flatKey == "country" && qv.Region != "" {
			out["region"] = qv.Region
		}
	}
	return out
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Profile is the public projection of an author-profile document: the
// allow-listed item keys plus the flattened profile fields.
type Profile map[string]any

// ProjectProfile reduces a profile-tagged item to its public shape.
func ProjectProfile(item *archive.Item, v *vocab.Vocab, uri string) Profile {
	p := Profile{
		"guid":           item.GUID,
		"original_id":    item.ID,
		"firstcreated":   item.FirstCreated,
		"versioncreated": item.VersionCreated,
		"uri":            uri,
	}
	if item.FirstPublished != nil {
		p["firstpublished"] = *item.FirstPublished
	}
	for k, val := range FlattenProfileFields(item.Extra, v) {
		p[k] = val
	}
	return p
}
