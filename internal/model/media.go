package model

import "time"

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

type MediaItem struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Type       MediaType `json:"type,omitempty"`
	Title      string    `json:"title"`
	AltText    string    `json:"altText,omitempty"`
	Dimensions string    `json:"dimensions,omitempty"`
	Size       string    `json:"size,omitempty"`
	FileType   string    `json:"fileType,omitempty"`
	UploadDate time.Time `json:"uploadDate,omitzero"`
}

// Stats backs the dashboard counters.
type Stats struct {
	Posts    int          `json:"posts"`
	Comments int          `json:"comments"`
	Tags     int          `json:"tags"`
	Media    int          `json:"media"`
	Recent   []RecentPost `json:"recent"`
}

type RecentPost struct {
	ID          PostID    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
