package util

import (
	"testing"
	"time"
)

func TestGetFrontMatter(t *testing.T) {
	testCases := []struct {
		name          string
		markdown      []byte
		expectError   bool
		expectedTitle string
		expectedDate  time.Time
	}{
		{
			name: "Valid Front Matter",
			markdown: []byte(`%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "No Front Matter",
			markdown: []byte(`# Just Content
No front matter here.`),
			expectError: true,
		},
		{
			name:        "Empty File",
			markdown:    []byte(""),
			expectError: true,
		},
		{
			name: "Content Before Front Matter",
			markdown: []byte(`
# This should be ignored
%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError: true,
		},
		{
			name: "Extra Whitespace",
			markdown: []byte(`


%%%

title = "Hello World"
date = 2025-01-01 00:00:00Z

%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Malformed Front Matter",
			markdown: []byte(`%%%
title = "Incomplete
# Content`),
			expectError: true,
		},
		{
			name: "Front Matter with No Title",
			markdown: []byte(`%%%
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Front Matter with No Date",
			markdown: []byte(`%%%
title = "No Date"
%%%
# Content`),
			expectError:   false,
			expectedTitle: "No Date",
			expectedDate:  time.Time{}, // Zero value for time
		},
		{
			name:        "Only Delimiters",
			markdown:    []byte("%%% %%%"),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, body, err := SplitFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				if info != nil || body != nil {
					t.Errorf("Expected nil info when error occurs, but got %+v", info)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}

			if info == nil {
				t.Fatal("Expected front matter info, but got nil")
			}

			if string(body) != "# Content" {
				t.Errorf("Expected body '# Content', but got %q", body)
			}

			if info.Title != tc.expectedTitle {
				t.Errorf("Expected title '%s', but got '%s'", tc.expectedTitle, info.Title)
			}

			if !info.Date.Equal(tc.expectedDate) {
				t.Errorf("Expected date '%v', but got '%v'", tc.expectedDate, info.Date)
			}
		})
	}
}

func TestFrontMatterFields(t *testing.T) {
	md := []byte(`%%%
title = "Imported"
slug = "imported-post"
description = "From disk"
tags = ["go", "cms"]
authors = ["Ada"]
featured_image = "https://cdn.example/cover.jpg"
featured = true
%%%
Body`)

	info, body, err := SplitFrontMatter(md)
	if err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}
	if string(body) != "Body" {
		t.Errorf("Expected body 'Body', got %q", body)
	}
	if info.Slug != "imported-post" || info.Description != "From disk" || !info.Featured {
		t.Errorf("Unexpected front matter %+v", info)
	}
	if got := info.TagNames(); len(got) != 2 || got[0] != "go" {
		t.Errorf("Unexpected tags %v", got)
	}
	if info.Language != "en" {
		t.Errorf("Expected default language en, got %q", info.Language)
	}
}

func TestTagNamesFallsBackToKeywords(t *testing.T) {
	info, _, err := SplitFrontMatter([]byte("%%%\ntitle = \"K\"\nkeyword = [\"one\"]\n%%%\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := info.TagNames(); len(got) != 1 || got[0] != "one" {
		t.Errorf("Expected keyword fallback, got %v", got)
	}
}

func TestContentHash(t *testing.T) {
	if ContentHashString("abc") != ContentHash([]byte("abc")) {
		t.Error("Expected string and byte hashes to agree")
	}
	if ContentHashString("abc") == ContentHashString("abd") {
		t.Error("Expected different content to hash differently")
	}
	if len(ContentHashString("")) != 64 {
		t.Error("Expected a hex sha256")
	}
}
