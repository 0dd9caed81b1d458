package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/cmaflive/streamchron/internal/actors"
	"github.com/cmaflive/streamchron/internal/dagstore"
	"github.com/cmaflive/streamchron/internal/nameservice"
	"github.com/cmaflive/streamchron/internal/transport"
	"github.com/cmaflive/streamchron/internal/transport/localbus"
	"github.com/cmaflive/streamchron/internal/transport/swarm"
	"github.com/cmaflive/streamchron/pkg/logging"
)

const gracefulShutdownWait = 2 * time.Second

// Mode selects which subcommand streamchron is running as (§4, §6.1): the
// live `stream` mode wires a real libp2p swarm and runs the Chat
// Aggregator; the `file` mode replays ingest against an in-process bus with
// no chat, the same split original_source/streamer-cli's two binaries make.
type Mode string

const (
	ModeStream Mode = "stream"
	ModeFile   Mode = "file"
)

// Options are the parsed CLI flags plus the mode they were parsed for.
type Options struct {
	Mode       Mode
	ListenAddr string // libp2p multiaddr, stream mode only
}

// ParseOptions parses args (excluding the program name and the mode
// subcommand word) into an Options and the layered Config. `stream` accepts
// --no-chat (skip the Chat Aggregator) and --no-archive (skip PubSub
// publication of minted video nodes) per §6.5; `file` always runs with both
// off, since it replays ingest with no network presence at all.
func ParseOptions(mode Mode, args []string) (*Options, *Config, error) {
	fs := pflag.NewFlagSet(string(mode), pflag.ContinueOnError)
	fs.String("input_socket_addr", "", "HTTP listen address for the Ingest Server")
	fs.String("video.pubsub_topic", "", "pubsub topic name for minted video nodes")
	fs.String("chat.topic", "", "pubsub topic name for chat")
	fs.String("chat.mods", "", "name service key for the moderator set")
	fs.String("chat.bans", "", "name service key for the ban set")
	fs.String("loglevel", "", "log level (debug, info, warn, error)")
	fs.String("logformat", "", "log format (text, json, pretty, discard)")
	listenAddr := fs.String("listen", "/ip4/0.0.0.0/tcp/4001", "libp2p listen multiaddr (stream mode)")
	noChat := fs.Bool("no-chat", false, "disable the Chat Aggregator (stream mode only)")
	noArchive := fs.Bool("no-archive", false, "disable PubSub publication of minted video nodes (stream mode only)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg, err := LoadConfig(fs)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Archive.ArchiveLiveChat = mode == ModeStream && !*noChat
	cfg.Video.PubsubEnable = mode == ModeStream && !*noArchive

	return &Options{Mode: mode, ListenAddr: *listenAddr}, cfg, nil
}

// Run wires the five components together and serves the Ingest Server
// until a shutdown signal arrives, then drains the pipeline: shut the HTTP
// server down, stop the Setup and Video Aggregators, stop the Chat
// Aggregator and republish grown moderation state, then Finalize the
// Archivist.
func Run(opts *Options, cfg *Config) error {
	if err := logging.InitSlog(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancelBkg := context.WithCancel(context.Background())
	defer cancelBkg()

	store := dagstore.New()
	ns := nameservice.New(store)

	var chatTopic transport.Topic
	var swarmHost *swarm.Swarm
	var bus *localbus.Bus

	switch opts.Mode {
	case ModeStream:
		var err error
		swarmHost, err = swarm.New(ctx, opts.ListenAddr)
		if err != nil {
			return fmt.Errorf("start swarm: %w", err)
		}
		defer swarmHost.Close()
		chatTopic, err = swarmHost.Topic(cfg.Chat.Topic)
		if err != nil {
			return fmt.Errorf("join chat topic: %w", err)
		}
	case ModeFile:
		bus = localbus.NewBus()
		chatTopic = bus.Topic(cfg.Chat.Topic)
	default:
		return fmt.Errorf("unknown mode %q", opts.Mode)
	}

	var videoPubsub transport.Topic
	if cfg.Video.PubsubEnable {
		var err error
		switch opts.Mode {
		case ModeStream:
			videoPubsub, err = swarmHost.Topic(cfg.Video.PubsubTopic)
		default:
			videoPubsub = bus.Topic(cfg.Video.PubsubTopic)
		}
		if err != nil {
			return fmt.Errorf("join video topic: %w", err)
		}
	}

	setupCh := make(chan actors.SetupEvent, 32)
	videoCh := make(chan actors.VideoEvent, 32)
	rawArchiveCh := make(chan actors.ArchiveEvent, 32)
	archiveCh := make(chan actors.ArchiveEvent, 32)

	setupAgg := actors.NewSetupAggregator(store, videoCh)
	videoAgg := actors.NewVideoAggregator(store, rawArchiveCh, videoPubsub)
	archivist := actors.NewArchivist(store)

	var chatAgg *actors.ChatAggregator
	if cfg.Archive.ArchiveLiveChat {
		var err error
		chatAgg, err = actors.OpenChatAggregator(ctx, store, ns, chatTopic, rawArchiveCh, cfg.Chat.Bans, cfg.Chat.Mods)
		if err != nil {
			return fmt.Errorf("open chat aggregator: %w", err)
		}
		chatAgg.OnOutcome = RecordChatOutcome
	}

	setupDone := make(chan struct{})
	videoDone := make(chan struct{})
	archiveDone := make(chan struct{})
	chatDone := make(chan struct{})

	go func() { _ = setupAgg.Run(ctx, setupCh); close(setupDone) }()
	go func() { _ = videoAgg.Run(ctx, videoCh); close(videoDone) }()
	go func() { _ = archivist.Run(ctx, archiveCh); close(archiveDone) }()
	if chatAgg != nil {
		go func() { _ = chatAgg.Run(ctx); close(chatDone) }()
	} else {
		close(chatDone)
	}

	// relay records mint/archival metrics on the way from the aggregators
	// to the Archivist, without the actors package depending on the app
	// package's prometheus registry.
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		for ev := range rawArchiveCh {
			switch ev.(type) {
			case actors.VideoArchiveEvent:
				RecordMinted("video")
			case actors.ChatArchiveEvent:
				RecordMinted("chat")
			}
			archiveCh <- ev
		}
	}()

	ing := NewIngest(store, setupCh, videoCh)
	router := setupRouter(ing)
	httpSrv := &http.Server{
		Addr:    cfg.InputSocketAddr,
		Handler: router,
	}

	startIssue := make(chan error, 1)
	go func() {
		slog.Info("starting ingest server", "addr", cfg.InputSocketAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			startIssue <- err
		}
	}()

	select {
	case err := <-startIssue:
		// No graceful drain on a failed listen: main exits right after this
		// returns, taking the actor goroutines with it.
		cancelBkg()
		return fmt.Errorf("ingest server: %w", err)
	case <-stopSignal:
		slog.Info("shutdown signal received")
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	if err := httpSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("http shutdown failed", "err", err)
	}

	deadline := time.After(gracefulShutdownWait)

	// No more ingest writes can land on setupCh once the HTTP server has
	// drained: closing it lets the Setup Aggregator's range loop end on
	// its own. Only once it has stopped (so it can no longer forward a
	// SetupDoneEvent) is it safe to close videoCh behind it.
	close(setupCh)
	select {
	case <-setupDone:
	case <-deadline:
		slog.Warn("setup aggregator did not stop before graceful shutdown deadline")
	}
	close(videoCh)
	select {
	case <-videoDone:
	case <-deadline:
		slog.Warn("video aggregator did not stop before graceful shutdown deadline")
	}

	if chatAgg != nil {
		if err := chatTopic.Publish(context.Background(), []byte("Stopping")); err != nil {
			slog.Error("failed to publish shutdown sentinel", "err", err)
		}
		select {
		case <-chatDone:
		case <-deadline:
			slog.Warn("chat aggregator did not stop before graceful shutdown deadline")
		}
		chatAgg.Close(context.Background(), ns)
	}

	archiveCh <- actors.FinalizeEvent{}
	select {
	case <-archiveDone:
	case <-deadline:
		slog.Warn("archivist did not finalize before graceful shutdown deadline")
	}

	cancelBkg()
	close(rawArchiveCh)
	<-relayDone

	return nil
}
