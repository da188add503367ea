// Package cli implements the sdpredux commands using cobra.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/nostressdev/webrtcredux/internal/config"
	"github.com/nostressdev/webrtcredux/internal/log"
	"github.com/pion/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configFile string

	in  io.Reader
	out io.Writer
	err io.Writer

	cfg     *config.Config
	loggers *log.LoggerFactory
	log     logging.LeveledLogger
}

// Execute runs the command line against the process streams.
func Execute() error {
	return NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute()
}

// NewRootCommand returns the sdpredux command tree reading from in and
// printing to out. Logs go to errOut.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, err: errOut}

	rootCmd := &cobra.Command{
		Use:   "sdpredux",
		Short: "Parse, render and negotiate Session Description Protocol documents",
		Long: `sdpredux reads SDP (RFC 4566) text with either line ending, renders it back,
and builds WebRTC offers and answers. Session descriptions travel as base64 of
their JSON form, optionally gzipped, for copy-paste signalling.`,
		Version:           "0.1.0",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.loggers.Close()
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().String(config.FlagKeys["log.level"], "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String(config.FlagKeys["line_ending"], "", "line ending of rendered SDP (lf, crlf)")

	rootCmd.AddCommand(
		a.newParseCommand(),
		a.newEncodeCommand(),
		a.newDecodeCommand(),
		a.newOfferCommand(),
		a.newAnswerCommand(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.loggers = log.NewLoggerFactory(cfg.Log, a.err)
	a.log = a.loggers.NewLogger("cli")
	a.log.Debugf("loaded config %q", a.configFile)
	return nil
}

// readFile reads the file named by args[0], or the input stream when there
// is no argument or it is "-".
func (a *app) readFile(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		a.log.Trace("reading standard input")
		b, err := io.ReadAll(a.in)
		return string(b), errors.Wrap(err, "reading standard input")
	}
	b, err := os.ReadFile(args[0])
	return string(b), errors.Wrapf(err, "reading %s", args[0])
}

// readArg returns args[0] itself, or the input stream when there is no
// argument or it is "-".
func (a *app) readArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		return a.readFile(nil)
	}
	return args[0], nil
}

func (a *app) println(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(a.out, s)
	return err
}
