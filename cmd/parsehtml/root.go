package main

import (
	"errors"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/viperadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName        = "parsehtml"
	configFlag     = "config"
	traceLevelFlag = "tracelevel"
)

// tracer traces with key 'parsehtml'.
func tracer() tracing.Trace {
	return tracing.Select(appName)
}

// tracerKeys are the tracers the --tracelevel flag applies to.
var tracerKeys = []string{
	"root", appName, "servo.dom", "servo.treebuilder", "servo.sink", "servo.engine",
	"servo.parser", "servo.loader", "servo.fetch",
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Parse HTML documents and print their trees",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return initTracing(conf)
		},
	}
	flags := cmd.PersistentFlags()
	flags.String(configFlag, "", "configuration file (default parsehtml.yaml)")
	flags.String(traceLevelFlag, "Error", "trace level for all packages: Error, Info or Debug")
	return cmd
}

// loadConfig reads the configuration file, if any, and applies the trace
// level flag.
func loadConfig(cmd *cobra.Command) (schuko.Configuration, error) {
	conf := viperadapter.New(appName)
	conf.InitDefaults()
	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if file, _ := cmd.Flags().GetString(configFlag); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		viper.SetConfigName(appName)
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/" + appName)
		var notFound viper.ConfigFileNotFoundError
		if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}
	level, _ := cmd.Flags().GetString(traceLevelFlag)
	for _, key := range tracerKeys {
		if cmd.Flags().Changed(traceLevelFlag) {
			viper.Set(traceLevelFlag+"."+key, level)
		} else {
			viper.SetDefault(traceLevelFlag+"."+key, level)
		}
	}
	return conf, nil
}

// initTracing routes all package tracers to a Go logger, with trace levels
// taken from the configuration.
func initTracing(conf schuko.Configuration) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, traceLevelFlag, trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}
