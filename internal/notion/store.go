// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// Store reads pending books from a Notion database and writes verdicts
// back to their pages.
type Store struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
	fields FieldMap
}

// BookHandle ties a query to its Notion page so the verdict can be
// written back. propNames holds the resolved property names for the
// page, keyed by logical field.
type BookHandle struct {
	PageID    notionapi.PageID
	Query     types.BookQuery
	propNames map[string]string
}

// NewStore builds a Store for the database. A nil fields map falls back
// to DefaultFieldMap.
func NewStore(cfg types.NotionConfig) *Store {
	fields := FieldMap(cfg.PropertyAliases)
	if len(fields) == 0 {
		fields = DefaultFieldMap()
	}
	return &Store{
		client: notionapi.NewClient(notionapi.Token(cfg.APIToken)),
		dbID:   notionapi.DatabaseID(cfg.DatabaseID),
		fields: fields,
	}
}

// ListPending returns the books whose availability checkbox is not set,
// paging through the whole database. Pages without a resolvable title
// are skipped with an error only when nothing at all resolves.
func (s *Store) ListPending(ctx context.Context) ([]BookHandle, error) {
	var handles []BookHandle
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database.Query(ctx, s.dbID, &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, fmt.Errorf("querying database: %w", err)
		}
		for _, page := range resp.Results {
			h, ok, err := s.handleFromPage(page)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", page.ID, err)
			}
			if ok {
				handles = append(handles, h)
			}
		}
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return handles, nil
}

// handleFromPage builds a handle for a page, filtering out pages whose
// availability checkbox is already set.
func (s *Store) handleFromPage(page notionapi.Page) (BookHandle, bool, error) {
	props := page.Properties
	names := make(map[string]string, len(s.fields))
	for field := range s.fields {
		if name, ok := s.fields.Resolve(field, props); ok {
			names[field] = name
		}
	}

	titleName, ok := names[FieldTitle]
	if !ok {
		return BookHandle{}, false, fmt.Errorf("no title property (accepted names: %s)",
			strings.Join(s.fields[FieldTitle], ", "))
	}
	title, err := textOf(props[titleName])
	if err != nil {
		return BookHandle{}, false, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return BookHandle{}, false, nil
	}

	if availName, ok := names[FieldAvailable]; ok {
		checked, err := checkboxOf(props[availName])
		if err != nil {
			return BookHandle{}, false, err
		}
		if checked {
			return BookHandle{}, false, nil
		}
	}

	var author string
	if authorName, ok := names[FieldAuthor]; ok {
		author, err = textOf(props[authorName])
		if err != nil {
			return BookHandle{}, false, err
		}
	}

	return BookHandle{
		PageID:    notionapi.PageID(page.ID),
		Query:     types.BookQuery{Title: title, Author: strings.TrimSpace(author)},
		propNames: names,
	}, true, nil
}

// UpdateVerdict writes the check result back to the book's page. Only
// properties the database actually has are written.
func (s *Store) UpdateVerdict(ctx context.Context, h BookHandle, out types.SearchOutcome, v types.Verdict) error {
	props := notionapi.Properties{}

	if name, ok := h.propNames[FieldAvailable]; ok {
		props[name] = notionapi.CheckboxProperty{Checkbox: v.Available}
	}
	if name, ok := h.propNames[FieldKeywords]; ok {
		props[name] = notionapi.RichTextProperty{
			RichText: richText(strings.Join(out.AttemptedKeywords, ", ")),
		}
	}
	if name, ok := h.propNames[FieldNotes]; ok {
		props[name] = notionapi.RichTextProperty{RichText: richText(noteFor(v))}
	}
	if name, ok := h.propNames[FieldLastChecked]; ok {
		now := notionapi.Date(time.Now().UTC())
		props[name] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &now}}
	}

	if len(props) == 0 {
		return nil
	}
	_, err := s.client.Page.Update(ctx, h.PageID, &notionapi.PageUpdateRequest{
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("updating page %s: %w", h.PageID, err)
	}
	return nil
}

// noteFor summarizes the verdict for the notes column.
func noteFor(v types.Verdict) string {
	if v.Failed() {
		return "check failed: " + v.Error
	}
	var b strings.Builder
	if v.Available {
		fmt.Fprintf(&b, "available (%.2f)", v.Confidence)
		if v.MatchedTitle != "" {
			fmt.Fprintf(&b, ": %s", v.MatchedTitle)
			if v.MatchedAuthor != "" {
				fmt.Fprintf(&b, " / %s", v.MatchedAuthor)
			}
		}
	} else {
		fmt.Fprintf(&b, "not available (%.2f)", v.Confidence)
	}
	if v.Reasoning != "" {
		fmt.Fprintf(&b, " - %s", v.Reasoning)
	}
	return b.String()
}
