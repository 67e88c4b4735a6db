// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion reads the book list from a Notion database and writes
// check results back to it.
package notion

import (
	"fmt"

	"github.com/jomei/notionapi"
)

// Logical fields the store reads and writes. Databases name their
// columns freely; a FieldMap translates these to actual property names.
const (
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldAvailable   = "available"
	FieldKeywords    = "keywords"
	FieldNotes       = "notes"
	FieldLastChecked = "last_checked"
)

// FieldMap maps a logical field to the property names it may appear
// under, in preference order. The first name present in the database
// wins.
type FieldMap map[string][]string

// DefaultFieldMap accepts the Chinese column names the database was
// created with plus common English equivalents.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		FieldTitle:       {"书名", "Title", "Name"},
		FieldAuthor:      {"作者", "Author"},
		FieldAvailable:   {"已上架", "Available"},
		FieldKeywords:    {"搜索关键词", "Keywords"},
		FieldNotes:       {"备注", "Notes"},
		FieldLastChecked: {"检查时间", "Last Checked"},
	}
}

// Resolve returns the property name for the logical field given the
// page's actual properties.
func (m FieldMap) Resolve(field string, props notionapi.Properties) (string, bool) {
	for _, name := range m[field] {
		if _, ok := props[name]; ok {
			return name, true
		}
	}
	return "", false
}

// plainText flattens a rich-text run into a plain string.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}

// richText builds a single-run rich-text value for writing.
func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

// textOf extracts the plain text of a title or rich-text property.
func textOf(p notionapi.Property) (string, error) {
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		return plainText(v.Title), nil
	case *notionapi.RichTextProperty:
		return plainText(v.RichText), nil
	default:
		return "", fmt.Errorf("property has type %T, want title or rich text", p)
	}
}

// checkboxOf extracts a checkbox property value.
func checkboxOf(p notionapi.Property) (bool, error) {
	cb, ok := p.(*notionapi.CheckboxProperty)
	if !ok {
		return false, fmt.Errorf("property has type %T, want checkbox", p)
	}
	return cb.Checkbox, nil
}
