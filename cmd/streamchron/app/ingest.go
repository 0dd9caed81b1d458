package app

import (
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/cmaflive/streamchron/internal/actors"
	"github.com/cmaflive/streamchron/internal/dagstore"
	"github.com/cmaflive/streamchron/internal/hlsmanifest"
	"github.com/cmaflive/streamchron/pkg/chunkparser"
	"github.com/cmaflive/streamchron/pkg/segmentkind"
)

// Ingest is the Ingest Server (§4.1): it receives PUT requests from the HLS
// encoder, stores each body's bytes content-addressed in store, and turns
// recognized paths into SetupEvent/VideoEvent values sent to setupTx/videoTx.
type Ingest struct {
	store   *dagstore.Store
	setupTx chan<- actors.SetupEvent
	videoTx chan<- actors.VideoEvent
}

func NewIngest(store *dagstore.Store, setupTx chan<- actors.SetupEvent, videoTx chan<- actors.VideoEvent) *Ingest {
	return &Ingest{store: store, setupTx: setupTx, videoTx: videoTx}
}

// PutHandlerFunc handles PUT requests for manifests, init segments, and
// media segments, classifying by extension (§4.1). Unrecognized extensions
// are rejected with 404, mirroring original_source/streamer-cli/src/server's
// put_requests dispatch.
func (ing *Ingest) PutHandlerFunc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", r.URL.Path)

	urlPath := strings.TrimPrefix(r.URL.Path, "/")
	ext := path.Ext(urlPath)
	kind := segmentkind.FromExtension(ext)

	if kind == segmentkind.Unknown {
		slog.Warn("rejecting unrecognized ingest path", "path", urlPath, "ext", ext)
		http.Error(w, "unrecognized extension", http.StatusNotFound)
		return
	}

	data, err := readBody(r.Body)
	if err != nil {
		slog.Error("failed to read ingest body", "path", urlPath, "err", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	switch kind {
	case segmentkind.Manifest:
		ing.handleManifest(w, urlPath, data)
	case segmentkind.Init:
		ing.handleSegment(w, r, urlPath, data, true)
	case segmentkind.Media:
		ing.handleSegment(w, r, urlPath, data, false)
	}
}

// readBody drains req.Body through a chunk parser rather than a bare
// io.ReadAll, the same chunked-read idiom
// cmd/cmaf-ingest-receiver/app/receiver.go's chunkParserCallback uses, so
// that a future caller can hook per-fragment processing without changing
// this function's signature.
func readBody(body io.Reader) ([]byte, error) {
	var full []byte
	cb := func(cd chunkparser.ChunkData) error {
		full = append(full, cd.Data...)
		return nil
	}
	parser := chunkparser.NewMP4ChunkParser(body, nil, cb)
	if err := parser.Parse(); err != nil {
		return nil, err
	}
	if full == nil {
		// The parser's EOF path hands any non-empty body to the callback,
		// mp4 or not (an m3u8 manifest arrives that way), so this is only
		// reached for an empty body.
		return io.ReadAll(body)
	}
	return full, nil
}

func (ing *Ingest) handleManifest(w http.ResponseWriter, urlPath string, data []byte) {
	renditions, ok, err := hlsmanifest.Decode(data)
	if err != nil {
		slog.Error("failed to decode manifest", "path", urlPath, "err", err)
		http.Error(w, "failed to decode manifest", http.StatusInternalServerError)
		return
	}
	if !ok {
		// media playlist: accepted, not forwarded.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	refs := make([]actors.RenditionRef, len(renditions))
	for i, r := range renditions {
		refs[i] = actors.RenditionRef{Name: r.Name, Codec: r.Codec, Bandwidth: r.Bandwidth}
	}
	ing.setupTx <- actors.PlaylistEvent{Renditions: refs}
	w.WriteHeader(http.StatusNoContent)
}

func (ing *Ingest) handleSegment(w http.ResponseWriter, r *http.Request, urlPath string, data []byte, isInit bool) {
	c, err := ing.store.Put(r.Context(), data)
	if err != nil {
		slog.Error("failed to store segment", "path", urlPath, "err", err)
		http.Error(w, "failed to store segment", http.StatusInternalServerError)
		return
	}

	if isInit {
		ing.setupTx <- actors.SetupSegmentEvent{Path: urlPath, CID: c}
	} else {
		ing.videoTx <- actors.MediaSegmentEvent{Path: urlPath, CID: c}
	}

	w.WriteHeader(http.StatusCreated)
}
