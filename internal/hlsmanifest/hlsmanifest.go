// Package hlsmanifest decodes the master playlist a PUT to the Ingest
// Server delivers and turns it into the rendition set the Setup Aggregator
// needs, mirroring original_source/defluencer-cli/src/actors/setup.rs's
// process_master_playlist.
package hlsmanifest

import (
	"bytes"
	"fmt"
	"path"

	"github.com/mogiioin/hls-m3u8/m3u8"

	"github.com/cmaflive/streamchron/internal/apperr"
)

// RenditionRef describes one variant entry from a master playlist before its
// init segment has arrived.
type RenditionRef struct {
	Name      string
	Codec     string
	Bandwidth int
}

// Decode parses body as an HLS playlist. ok is false (with no error) when
// the playlist is a media playlist rather than a master playlist: the
// Ingest Server accepts those without forwarding them, per §4.1.
func Decode(body []byte) (renditions []RenditionRef, ok bool, err error) {
	var buf bytes.Buffer
	buf.Write(body)

	playlist, listType, err := m3u8.Decode(buf, false)
	if err != nil {
		return nil, false, apperr.WrapProtocol("decode hls playlist", err)
	}
	if listType != m3u8.MASTER {
		return nil, false, nil
	}

	master, isMaster := playlist.(*m3u8.MasterPlaylist)
	if !isMaster {
		return nil, false, apperr.Protocolf("decoded MASTER list type but got %T", playlist)
	}

	renditions = make([]RenditionRef, 0, len(master.Variants))
	for _, variant := range master.Variants {
		name := renditionName(variant.URI)
		renditions = append(renditions, RenditionRef{
			Name:      name,
			Codec:     contentType(name, variant.Codecs),
			Bandwidth: int(variant.Bandwidth),
		})
	}
	return renditions, true, nil
}

// renditionName extracts the rendition name from a variant URI's parent
// directory, the same convention the Ingest Server uses to name incoming
// segment paths (".../<rendition>/<index>.m4s").
func renditionName(uri string) string {
	return path.Base(path.Dir(uri))
}

func contentType(renditionName, codec string) string {
	if renditionName == "audio" {
		return fmt.Sprintf(`audio/mp4; codecs="%s"`, codec)
	}
	return fmt.Sprintf(`video/mp4; codecs="%s"`, codec)
}
