package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cmaflive/streamchron/cmd/streamchron/app"
	"github.com/cmaflive/streamchron/internal"
)

const usage = `Usage: %s <stream|file> [flags]

  stream   run the Ingest Server, Setup/Video/Chat Aggregators, and
           Archivist against a real libp2p swarm
  file     replay ingest against an in-process pubsub bus with chat
           archival disabled, for local testing

`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	if os.Args[1] == "-version" || os.Args[1] == "--version" {
		internal.CheckVersion(true)
		return
	}

	var mode app.Mode
	switch os.Args[1] {
	case "stream":
		mode = app.ModeStream
	case "file":
		mode = app.ModeFile
	default:
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	opts, cfg, err := app.ParseOptions(mode, os.Args[2:])
	if err != nil {
		slog.Error("failed to parse options", "err", err)
		os.Exit(1)
	}

	if err := app.Run(opts, cfg); err != nil {
		slog.Error("streamchron exited with error", "err", err)
		os.Exit(1)
	}
}
