package domain

import "strings"

// ─── Tags ───────────────────────────────────────────────────────────────────

// CustomTagPrefix marks user-defined tag ids.
const CustomTagPrefix = "custom_"

// DefaultTagIcon is used for tags that are not in any catalog.
const DefaultTagIcon = "Activity"

// Tag is a contextual label attached to entries.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// IsCustom reports whether the tag was created by the user.
func (t Tag) IsCustom() bool { return IsCustomTagID(t.ID) }

// IsCustomTagID reports whether id belongs to a user-defined tag.
func IsCustomTagID(id string) bool {
	return strings.HasPrefix(id, CustomTagPrefix)
}

// BuiltinTags returns the fixed tag catalog in display order.
func BuiltinTags() []Tag {
	return []Tag{
		{ID: "work", Label: "Work", Icon: "Briefcase"},
		{ID: "sleep", Label: "Sleep", Icon: "Moon"},
		{ID: "family", Label: "Family", Icon: "Users"},
		{ID: "health", Label: "Health", Icon: "Heart"},
		{ID: "finance", Label: "Finance", Icon: "DollarSign"},
		{ID: "social", Label: "Social life", Icon: "MessageCircle"},
	}
}

// TagCatalog is an ordered set of tags used to resolve ids to labels.
// It is a plain value: built-ins first, then custom tags.
type TagCatalog struct {
	tags []Tag
}

// NewTagCatalog builds a catalog of the built-in tags followed by custom.
// A custom tag reusing an existing id is ignored.
func NewTagCatalog(custom ...Tag) TagCatalog {
	tags := BuiltinTags()
	seen := make(map[string]struct{}, len(tags)+len(custom))
	for _, t := range tags {
		seen[t.ID] = struct{}{}
	}
	for _, t := range custom {
		if t.ID == "" {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		tags = append(tags, t)
	}
	return TagCatalog{tags: tags}
}

// Tags returns a copy of the catalog contents.
func (c TagCatalog) Tags() []Tag {
	if c.tags == nil {
		return BuiltinTags()
	}
	out := make([]Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Custom returns only the user-defined tags.
func (c TagCatalog) Custom() []Tag {
	var out []Tag
	for _, t := range c.tags {
		if t.IsCustom() {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the tag with the given id.
func (c TagCatalog) Lookup(id string) (Tag, bool) {
	tags := c.tags
	if tags == nil {
		tags = BuiltinTags()
	}
	for _, t := range tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// Resolve returns the catalog tag for id, or a placeholder labelled with the
// raw id when it is unknown.
func (c TagCatalog) Resolve(id string) Tag {
	if t, ok := c.Lookup(id); ok {
		return t
	}
	return Tag{ID: id, Label: id, Icon: DefaultTagIcon}
}
