// Package segmentkind classifies an ingest request path by its file
// extension, the same ext-to-kind switch idiom the teacher's pkg/cmaf uses
// for CMAF extensions, adapted to the three extensions the Ingest Server
// recognizes (§4.1): m3u8 manifests, mp4 init segments, m4s media segments.
package segmentkind

import "fmt"

type Kind int

const (
	Unknown Kind = iota
	Manifest
	Init
	Media
)

const (
	ManifestExtension = ".m3u8"
	InitExtension     = ".mp4"
	MediaExtension    = ".m4s"
)

func (k Kind) String() string {
	switch k {
	case Manifest:
		return "manifest"
	case Init:
		return "init"
	case Media:
		return "media"
	default:
		return "unknown"
	}
}

// FromExtension classifies ext (including its leading dot, as returned by
// path.Ext). Any extension other than the three the Ingest Server accepts
// yields Unknown, not an error: the caller decides whether that is a 404.
func FromExtension(ext string) Kind {
	switch ext {
	case ManifestExtension:
		return Manifest
	case InitExtension:
		return Init
	case MediaExtension:
		return Media
	default:
		return Unknown
	}
}

// ExtensionFromKind is the inverse of FromExtension; only the package's
// tests call it.
func ExtensionFromKind(k Kind) (string, error) {
	switch k {
	case Manifest:
		return ManifestExtension, nil
	case Init:
		return InitExtension, nil
	case Media:
		return MediaExtension, nil
	default:
		return "", fmt.Errorf("unknown segment kind %v", k)
	}
}
