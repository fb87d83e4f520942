package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/camship"
	"github.com/bft-labs/camship/internal/cliconfig"
	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/metrics"
	"github.com/bft-labs/camship/pkg/log"
)

const helpBanner = `
  ___  __ _  _ __ ___   ___ | |__  (_) _ __
 / __|/ _' || '_ ' _ \ / __|| '_ \ | || '_ \
| (__| (_| || | | | | |\__ \| | | || || |_) |
 \___|\__,_||_| |_| |_||___/|_| |_||_|| .__/
                                      |_|
`

const helpDescription = `
Stream camera stills to a collector as one chunked multipart/form-data upload.

Highlights:
  - Sends a fixed number of frames at a steady interval over a single request.
  - Takes frames from a spool directory, a capture command, or a set of files.
  - Skips failed captures without breaking the stream.
  - Configure via file, env (CAMSHIP_*), or flags; flags win.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  camship --host 192.168.1.34 --port 5000 --spool-dir /run/camship/spool
  camship --host 192.168.1.34 --source command --capture-cmd "libcamera-still -n -t 1 -o -"
  camship still --host 192.168.1.34 ./snapshot.jpg
  camship ping --host 192.168.1.34
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// loadConfig layers file, env and flags, then validates. Subcommands that
	// never capture only need a reachable endpoint.
	loadConfig := func(cmd *cobra.Command, streaming bool) (log.Logger, error) {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return nil, err
			}
		}

		// Environment overrides the file; flags override both.
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return nil, err
		}

		zl = zl.Level(log.ParseLevel(cfg.LogLevel))
		logger := log.NewZerologAdapterWithLogger(zl)

		validate := cfg.ValidateEndpoint
		if streaming {
			validate = cfg.Validate
		}
		if err := validate(); err != nil {
			return nil, err
		}
		zl.Debug().Interface("config", cfg).Msg("configuration")
		return logger, nil
	}

	root := &cobra.Command{
		Use:           "camship",
		Short:         "Stream camera stills to a collector over one chunked upload",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := metrics.NewCollector("camship")
			res, runErr := camship.Stream(ctx, cfg,
				camship.WithLogger(logger),
				camship.WithObserver(collector),
			)

			if cfg.MetricsFile != "" {
				if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
					logger.Warn("write metrics", log.String("file", cfg.MetricsFile), log.Err(err))
				}
			}
			if runErr != nil {
				var se *domain.SessionError
				if errors.As(runErr, &se) {
					return fmt.Errorf("upload aborted after %d frames: %w", res.FramesSent, runErr)
				}
				return runErr
			}

			for _, line := range res.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	still := &cobra.Command{
		Use:   "still <image>",
		Short: "Upload one image as a fixed-length multipart request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			res, err := camship.UploadStill(cmd.Context(), cfg, data, camship.WithLogger(logger))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Body)
			return nil
		},
	}

	ping := &cobra.Command{
		Use:   "ping",
		Short: "Check that the collector is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			if err := camship.Probe(cmd.Context(), cfg, camship.WithLogger(logger)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	root.AddCommand(still, ping)

	// Connection flags are shared by every subcommand.
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.camship/config.toml)")
	pf.StringVar(&cfg.Host, "host", cfg.Host, "collector host name or IP")
	pf.IntVar(&cfg.Port, "port", cfg.Port, "collector port")
	pf.StringVar(&cfg.StillPath, "still-path", cfg.StillPath, "single-shot upload path")
	pf.StringVar(&cfg.ProbePath, "probe-path", cfg.ProbePath, "reachability probe path")
	pf.StringVar(&cfg.FieldName, "field", cfg.FieldName, "form field name of each frame part")
	pf.StringVar(&cfg.ContentType, "content-type", cfg.ContentType, "content type of each frame part")
	pf.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout for probe and still requests")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	f := root.Flags()
	f.StringVar(&cfg.StreamPath, "path", cfg.StreamPath, "streaming upload path")
	f.IntVar(&cfg.FrameCount, "frames", cfg.FrameCount, "capture attempts per session")
	f.DurationVar(&cfg.FrameInterval, "interval", cfg.FrameInterval, "minimum time between capture starts")
	f.StringVar(&cfg.Boundary, "boundary", cfg.Boundary, `multipart boundary ("random" generates one per session)`)
	f.StringVar(&cfg.FilenamePattern, "filename-pattern", cfg.FilenamePattern, "part filename, %d is the attempt ordinal")
	f.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "TCP connect timeout")
	f.IntVar(&cfg.Retries, "retries", cfg.Retries, "reconnect attempts when the collector refuses the connection")

	f.StringVar(&cfg.Source, "source", cfg.Source, "frame source: dir, command or files")
	f.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "directory watched for new frames (source dir)")
	f.StringVar(&cfg.SpoolPattern, "spool-pattern", cfg.SpoolPattern, "file name pattern in the spool directory")
	f.BoolVar(&cfg.SpoolRemove, "spool-remove", cfg.SpoolRemove, "delete spooled frames after reading them")
	f.StringVar(&cfg.CaptureCommand, "capture-cmd", cfg.CaptureCommand, "command printing one JPEG to stdout (source command)")
	f.DurationVar(&cfg.CaptureTimeout, "capture-timeout", cfg.CaptureTimeout, "how long one capture may take")
	f.StringVar(&cfg.Files, "files", cfg.Files, "glob of images replayed in order (source files)")

	f.BoolVar(&cfg.Probe, "probe", cfg.Probe, "ping the collector before capturing")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus textfile metrics here after the session")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("camship")
		os.Exit(1)
	}
}
