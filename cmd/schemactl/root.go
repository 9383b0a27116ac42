package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/schemacache/v1/client"
	"github.com/Aleph-Alpha/schemacache/v1/logger"
)

type options struct {
	urls       []string
	configPath string
	token      string
	strategy   string
	logLevel   string

	out io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &options{out: os.Stdout}

	root := &cobra.Command{
		Use:           "schemactl",
		Short:         "Inspect protobuf descriptor sets served by a schema registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.out = cmd.OutOrStdout()
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&opts.urls, "url", "u", nil, "descriptor set source URL, repeatable; earlier sources win")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.token, "token", "", "bearer token sent to the registry")
	flags.StringVar(&opts.strategy, "strategy", "", "refresh strategy: long_polling or version_based")
	flags.StringVar(&opts.logLevel, "log-level", logger.Warning, "log level: debug, info, warning, error")

	root.AddCommand(
		newListCmd(opts),
		newTypesCmd(opts),
		newGetCmd(opts),
		newDecodeCmd(opts),
		newEncodeCmd(opts),
	)
	return root
}

// newClient builds a client from the config file (if any), environment and flags,
// in increasing order of precedence.
func (o *options) newClient() (client.Client, *logger.Logger, error) {
	var (
		cfg client.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = client.LoadConfigFile(o.configPath)
	} else {
		cfg, err = client.NewConfigFromEnv()
	}
	if err != nil {
		return nil, nil, err
	}

	if len(o.urls) > 0 {
		cfg.URLs = o.urls
	}
	if o.token != "" {
		cfg.FetchAuthBearerToken = o.token
	}
	if o.strategy != "" {
		cfg.RefreshStrategy = o.strategy
	}
	if len(cfg.URLs) == 0 {
		return nil, nil, fmt.Errorf("no source given: use --url, a config file or SCHEMA_CACHE_URLS")
	}

	log := logger.NewLoggerClient(logger.Config{Level: o.logLevel, ServiceName: "schemactl"})
	cfg.Logger = log

	c, err := client.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}
