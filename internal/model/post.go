// Package model defines the CMS entities exchanged with the content API.
package model

import (
	"time"
)

type PostID string

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the statuses the API accepts.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID PostID `json:"_id,omitempty"`

	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	FeaturedImage  string `json:"featuredImage"`
	Status         Status `json:"status"`
	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	IsFeatured     bool   `json:"isFeatured"`

	Tags    []Tag    `json:"tags"`
	Authors []Author `json:"authors"`

	// Server-owned, read-only from the console.
	Views        int       `json:"views"`
	LikeCount    int       `json:"likeCount"`
	DislikeCount int       `json:"dislikeCount"`
	IsDeleted    bool      `json:"isDeleted"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// NewPost returns the empty post a fresh authoring form starts from.
func NewPost() *Post {
	return &Post{
		Status:  StatusDraft,
		Tags:    []Tag{},
		Authors: []Author{},
	}
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

func (p *Post) IsDraft() bool {
	return p.Status == StatusDraft
}

// PostInput is the body of a create request: a post minus every server-owned field.
type PostInput struct {
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Description    string   `json:"description"`
	Content        string   `json:"content"`
	FeaturedImage  string   `json:"featuredImage"`
	Status         Status   `json:"status"`
	SEOTitle       string   `json:"seoTitle"`
	SEODescription string   `json:"seoDescription"`
	IsFeatured     bool     `json:"isFeatured"`
	Tags           []Tag    `json:"tags"`
	Authors        []Author `json:"authors"`
}

func (p *Post) Input() PostInput {
	return PostInput{
		Title:          p.Title,
		Slug:           p.Slug,
		Description:    p.Description,
		Content:        p.Content,
		FeaturedImage:  p.FeaturedImage,
		Status:         p.Status,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		IsFeatured:     p.IsFeatured,
		Tags:           p.Tags,
		Authors:        p.Authors,
	}
}

// Clone returns a copy that shares no slices with p.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = append([]Tag(nil), p.Tags...)
	c.Authors = append([]Author(nil), p.Authors...)
	return &c
}

// PostPage is one page of the post list.
type PostPage struct {
	Posts []Post `json:"blogs"`
	Page  int    `json:"page"`
	Total int    `json:"total"`
}
