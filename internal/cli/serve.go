package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/commandlogd/commandlogd/internal/config"
	"github.com/commandlogd/commandlogd/internal/logstore"
	"github.com/commandlogd/commandlogd/internal/logtail"
	"github.com/commandlogd/commandlogd/internal/metrics"
	"github.com/commandlogd/commandlogd/internal/ringlog"
	"github.com/commandlogd/commandlogd/internal/server"
	"github.com/commandlogd/commandlogd/internal/ticker"
)

func newServeCmd() *cobra.Command {
	var daemonize bool
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the command log TCP server and Ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if daemonize {
				return daemonizeSelf()
			}
			return runServe(listenAddr)
		},
	}

	cmd.Flags().BoolVarP(&daemonize, "daemon", "d", false, "daemonize: detach into a background session")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "TCP listen address (overrides config)")
	return cmd
}

func effectiveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	return config.DefaultDataDir
}

func runServe(listenAddr string) error {
	cfg, err := config.Load(effectiveDataDir())
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	tail := logtail.New()
	log.SetOutput(io.MultiWriter(os.Stdout, logFile, tail))

	telemetry, err := metrics.Open(cfg.MetricsDBPath())
	if err != nil {
		return fmt.Errorf("opening telemetry store: %w", err)
	}
	defer telemetry.Close()

	store, err := logstore.Open(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("opening log store: %w", err)
	}
	defer store.Remove()

	ring := ringlog.New(cfg.RingCapacity)

	srv := server.New(cfg.ListenAddr, cfg.ReadChunkBytes, ring, store, telemetry)

	tick := ticker.New(
		ticker.AppenderFunc(srv.TickerAppend),
		time.Duration(cfg.TickerSeconds)*time.Second,
		telemetry,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[serve] received signal %v, shutting down...", sig)
		cancel()
	}()

	go tick.Run(ctx)

	err = srv.Serve(ctx)

	log.Printf("[serve] shutdown summary: last %d log lines follow", len(tail.Last(20)))
	for _, entry := range tail.Last(20) {
		fmt.Printf("  %s  %s\n", entry.Time.Format("15:04:05.000"), entry.Message)
	}

	return err
}

// daemonizeSelf re-execs the current binary's "serve" command (without the
// --daemon flag) as a detached child in a new session, then exits the
// parent with status 0. Go processes cannot fork() in place, so this is
// the idiomatic stand-in for the original's double-fork: a fresh child
// process, its own session via Setsid, stdout redirected to the null
// device, working directory at root.
func daemonizeSelf() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	childArgs := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a != "-d" && a != "--daemon" {
			childArgs = append(childArgs, a)
		}
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening null device: %w", err)
	}
	defer devNull.Close()

	child := exec.Command(exe, childArgs...)
	child.Dir = "/"
	child.Stdin = devNull
	child.Stdout = devNull
	child.Stderr = devNull
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("starting daemon child: %w", err)
	}

	fmt.Printf("commandlogd daemonized as pid %d\n", child.Process.Pid)
	return nil
}
