package util

import (
	"regexp"
	"strings"
)

const youtubeEmbedBase = "https://www.youtube-nocookie.com/embed/"

var (
	youtubeShortRegex = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`)
	youtubeWatchRegex = regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]+)`)
)

// YouTubeEmbedURL rewrites any YouTube link to its privacy-enhanced embed form.
// Unrecognised URLs are returned unchanged.
func YouTubeEmbedURL(url string) string {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return ""
	case strings.Contains(url, "youtube-nocookie.com/embed/"):
		return url
	case strings.Contains(url, "youtube.com/embed/"):
		return strings.Replace(url, "youtube.com/embed/", "youtube-nocookie.com/embed/", 1)
	}

	if m := youtubeShortRegex.FindStringSubmatch(url); m != nil {
		return youtubeEmbedBase + m[1]
	}
	if m := youtubeWatchRegex.FindStringSubmatch(url); m != nil {
		return youtubeEmbedBase + m[1]
	}
	return url
}
