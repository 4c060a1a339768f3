package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Set at build.
var version = "v0.1.0"

type globalOptions struct {
	logLevel    string
	logFormat   string
	metricsAddr string
	cpuProfile  string
}

func (o *globalOptions) installFlags(flags *pflag.FlagSet) {
	level := os.Getenv("NARVAL_LOG_LEVEL")
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	flags.StringVarP(&o.logLevel, "log-level", "l", level, `Log level ("debug"|"info"|"warn"|"error")`)
	flags.StringVar(&o.logFormat, "log-format", "text", `Log format ("text"|"json")`)
	flags.StringVar(&o.metricsAddr, "metrics-addr", os.Getenv("NARVAL_METRICS_ADDR"), "Serve Prometheus metrics on this address")
	flags.StringVar(&o.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
}

// setup configures logging and optional side services. The returned
// function stops them.
func (o *globalOptions) setup() (func(), error) {
	lvl, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", o.logLevel)
	}
	logrus.SetLevel(lvl)
	switch strings.ToLower(o.logFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("invalid log format %q", o.logFormat)
	}

	var stops []func()
	if o.metricsAddr != "" {
		srv := &http.Server{Addr: o.metricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Warn("metrics server stopped")
			}
		}()
		logrus.WithField("addr", o.metricsAddr).Info("serving metrics")
		stops = append(stops, func() { _ = srv.Close() })
	}
	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return nil, errors.Wrap(err, "create cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "start cpu profile")
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}
	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}, nil
}

func newRootCommand() *cobra.Command {
	var opts globalOptions
	var stop func()

	cmd := &cobra.Command{
		Use:           "narval",
		Short:         "Sparse-volume index, traversal and volumetric renderer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.setup()
			if err != nil {
				return err
			}
			stop = s
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if stop != nil {
				stop()
			}
		},
	}
	opts.installFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		newRenderCommand(),
		newIndexCommand(),
		newSlicesCommand(),
		newVersionCommand(),
	)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "narval %s\n", version)
		},
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logrus.SetOutput(os.Stderr)
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("narval failed")
		os.Exit(1)
	}
}
