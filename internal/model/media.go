package model

import (
	"strings"
	"time"
)

// MediaURLPrefix is the public path uploaded files are served under.
const MediaURLPrefix = "/uploads/content/"

type Media struct {
	ID        int64     `db:"id" json:"id"`
	Type      MediaType `db:"type" json:"type"`
	Filename  string    `db:"filename" json:"filename"`
	MimeType  string    `db:"mime_type" json:"mimeType"`
	Size      *int64    `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	URL       string    `db:"-" json:"url"`
}

func (m *Media) WithURL() *Media {
	m.URL = MediaURLPrefix + m.Filename
	return m
}

// MediaTypeFromMIME classifies an upload: video/* is video, anything naming a
// font is a font, everything else is treated as an image.
func MediaTypeFromMIME(mimeType string) MediaType {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mimeType, "video"):
		return MediaTypeVideo
	case strings.Contains(mimeType, "font"):
		return MediaTypeFont
	default:
		return MediaTypeImage
	}
}

type CreateMediaParams struct {
	Type     MediaType
	Filename string
	MimeType string
	Size     int64
}
