package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"reports/internal/config"
)

// Version is filled in by ldflags.
var Version = "v0.0.0"

// Main holds the resolved command line options.
type Main struct {
	Verbose        bool
	Exclude        []string
	Validate       bool
	MetricsBackend string
	PushgatewayURL string
	DatadogAddr    string
	Job            string

	stdin          io.Reader
	stdout, stderr io.Writer
	info           *log.Logger
}

// NewRootCommand builds the reports command. Every flag can also be set
// through a REPORTS_ environment variable, e.g. REPORTS_EXCLUDE=a,b.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &Main{stdin: stdin, stdout: stdout, stderr: stderr}
	rc := &cobra.Command{
		Use:   "reports [CONFIG_FILE]",
		Short: "reports - build tabular reports from files, databases and directories",
		Long: `Reads a YAML file listing reports. Each report reads an input
manager, filters and maps its rows, and prints, exports or mails the result.
The file is read from standard input when CONFIG_FILE is "-" or absent.

Version: ` + Version + "\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags(), "REPORTS")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return m.Run(cmd.Context(), path)
		},
	}
	flags := rc.Flags()
	flags.BoolVarP(&m.Verbose, "verbose", "v", false, "print info lines while running")
	flags.StringSliceVarP(&m.Exclude, "exclude", "e", nil, "report titles to skip")
	flags.BoolVar(&m.Validate, "validate", false, "validate the configuration and exit")
	flags.StringVar(&m.MetricsBackend, "metrics-backend", "none", "metrics backend: none, pushgateway or datadog")
	flags.StringVar(&m.PushgatewayURL, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL")
	flags.StringVar(&m.DatadogAddr, "datadog-addr", "127.0.0.1:8125", "DogStatsD address")
	flags.StringVar(&m.Job, "job", "reports", "job name used to group pushed metrics")
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	rc.SetIn(stdin)
	rc.SetContext(context.Background())
	return rc
}

// setAllConfig applies, for every flag not given on the command line, the
// value of the environment variable named after it: upper-cased, dashes
// replaced by underscores and prefixed with envPrefix.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		value := v.GetString(f.Name)
		if f.Value.Type() == "stringSlice" && value == "" {
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}

// Run loads the file at path and builds every report not excluded.
func (m *Main) Run(ctx context.Context, path string) error {
	m.info = log.New(io.Discard, "info: ", 0)
	if m.Verbose {
		m.info.SetOutput(m.stderr)
	}
	setVerbose(m.Verbose)

	f, err := m.load(path)
	if err != nil {
		return err
	}
	m.info.Printf("parsed YAML file %s", path)

	issues := config.Validate(*f)
	for _, iss := range issues {
		fmt.Fprintf(m.stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration %s is invalid", path)
	}
	if m.Validate {
		fmt.Fprintf(m.stdout, "configuration %s is valid\n", path)
		return nil
	}

	flush := m.setupMetrics()
	defer flush()

	m.info.Printf("found %d report(s)", len(f.Reports))
	for _, e := range f.Reports {
		if m.excluded(e.Report.Title) {
			m.info.Printf("skip report %s", e.Report.Title)
			continue
		}
		if err := m.runReport(ctx, e.Report); err != nil {
			return err
		}
	}
	return nil
}

func (m *Main) load(path string) (*config.File, error) {
	if path == "-" {
		return config.Parse(m.stdin)
	}
	return config.Load(path)
}

func (m *Main) excluded(title string) bool {
	for _, x := range m.Exclude {
		if x == title {
			return true
		}
	}
	return false
}
