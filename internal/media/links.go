// Package media constructs the path-bearing URLs for result rows. The file
// gateway that actually serves bytes sits behind these URLs and is not part
// of this service.
package media

import (
	"net/url"
	"strings"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
}

var videoExts = map[string]bool{
	"mp4": true, "mov": true, "m4v": true,
}

// Kind classifies a file extension as "image", "video" or "".
func Kind(ext string) string {
	ext = strings.ToLower(ext)
	switch {
	case imageExts[ext]:
		return "image"
	case videoExts[ext]:
		return "video"
	default:
		return ""
	}
}

// EncodePath percent-encodes a filesystem path but keeps slashes literal, so
// the gateway sees /srv/mergerfs/... rather than %2F-escaped segments.
func EncodePath(p string) string {
	return strings.ReplaceAll(url.QueryEscape(p), "%2F", "/")
}

// LinkBuilder derives the preview, download and SMB URLs for a media path.
type LinkBuilder struct {
	SMBHost    string // e.g. raspberrypi.local
	UnixPrefix string // filesystem prefix the SMB share is mounted under
}

func (b LinkBuilder) Preview(path string) string {
	return "/preview?path=" + EncodePath(path)
}

func (b LinkBuilder) Download(path string) string {
	return "/download?path=" + EncodePath(path)
}

// SMB converts a local path to an smb:// URL, best effort: only paths under
// the configured prefix are derivable.
func (b LinkBuilder) SMB(path string) (string, bool) {
	if b.SMBHost == "" || b.UnixPrefix == "" {
		return "", false
	}
	if !strings.HasPrefix(path, b.UnixPrefix) {
		return "", false
	}
	rel := strings.TrimPrefix(path, b.UnixPrefix)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.ReplaceAll(rel, " ", "%20")
	return "smb://" + b.SMBHost + "/" + rel, true
}
