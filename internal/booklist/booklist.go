// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package booklist reads book queries from a local YAML file and writes
// run reports, as the file-based alternative to the Notion database.
package booklist

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// BookFile is the on-disk representation of a book list.
type BookFile struct {
	Books []types.BookQuery `yaml:"books"`
}

// Report is the on-disk representation of a completed run: the verdicts
// plus summary counts, reloadable without re-querying any API.
type Report struct {
	Summary ReportSummary       `yaml:"summary"`
	Results []types.BookVerdict `yaml:"results"`
}

// ReportSummary stores run statistics and a timestamp.
type ReportSummary struct {
	Total          int    `yaml:"total"`
	Available      int    `yaml:"available"`
	Unavailable    int    `yaml:"unavailable"`
	Failed         int    `yaml:"failed"`
	NewlyAvailable int    `yaml:"newly_available"`
	Timestamp      string `yaml:"timestamp"`
}

// ReadBookFile loads a book list from a YAML file. Every entry needs a
// non-empty title; authors are optional.
func ReadBookFile(path string) ([]types.BookQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading book file: %w", err)
	}
	var bf BookFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing book file: %w", err)
	}
	if len(bf.Books) == 0 {
		return nil, fmt.Errorf("book file %s lists no books", path)
	}
	for i, q := range bf.Books {
		if q.Title == "" {
			return nil, fmt.Errorf("book %d has no title", i+1)
		}
	}
	return bf.Books, nil
}

// WriteReport saves the run results to a YAML file.
func WriteReport(path string, summary types.RunSummary) error {
	report := Report{
		Summary: ReportSummary{
			Total:          summary.Total,
			Available:      summary.Available,
			Unavailable:    summary.Unavailable,
			Failed:         len(summary.Failed),
			NewlyAvailable: len(summary.NewlyAvailable),
			Timestamp:      summary.Timestamp.Format(time.RFC3339),
		},
		Results: summary.Results,
	}
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously written report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
