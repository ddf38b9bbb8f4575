/***************************************************************
 *
 * Copyright (C) 2025, Pelican Project, Morgridge Institute for Research
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pelicanplatform/histjob/config"
	"github.com/pelicanplatform/histjob/logging"
	"github.com/pelicanplatform/histjob/param"
)

const exampleJob = `{
    "publisher"     : "twitter",
    "streamType"    : "track",
    "dataFormat"    : "activity-streams",
    "fromDate"      : "201601130000",
    "toDate"        : "201601130100",
    "title"         : "Test job",
    "rules" : [
        {"value": "teapot"}
    ]
}
`

const usageText = `USAGE: histjob SUBCOMMAND [ARGS]

Available subcommands:
  list USERNAME PASSWORD [JOB_ID]: list all current jobs.  Optional filter
  new JOB_FILE USERNAME PASSWORD: get a quote for a new job
  accept JOB_ID USERNAME PASSWORD: accept (start) a quoted job
  reject JOB_ID USERNAME PASSWORD: reject a quoted job
  download JOB_ID OUTPUT_FILE USERNAME PASSWORD: download files from a completed job
  help: show this help

The account and endpoint are read from $HOME/.config/histjob/histjob.yaml
(or --config), HISTJOB_* environment variables and the global flags; run
"histjob SUBCOMMAND --help" to list the flags.

Job file format
---------------
Job files are JSON (or YAML when named *.yaml or *.yml), following the
historical job request format, e.g.:
` + exampleJob

// errUsage is returned after the usage text has been shown; it carries no
// further message for the user.
var errUsage = errors.New("invalid command line")

var (
	cfgFile    string
	noProgress bool

	rootCmd = &cobra.Command{
		Use:   "histjob",
		Short: "Manage historical data jobs",
		Long: `The histjob tool requests quotes for historical data jobs, accepts
or rejects them, and downloads the results of completed jobs.`,
		Args:              cobra.ArbitraryArgs,
		RunE:              rootMain,
		PersistentPreRunE: initClient,
		SilenceErrors:     true,
	}

	helpCmd = &cobra.Command{
		Use:   "help",
		Short: "Show usage information",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			printUsage(cmd.ErrOrStderr())
			return errUsage
		},
		// Help must work without a readable configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
)

// Execute runs the command line given by args (without the program name)
func Execute(args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		// Errors before InitClient leave the logs buffered
		if flushErr := logging.FlushLogs(false); flushErr != nil {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Failed to flush logs:", flushErr)
		}
		if !errors.Is(err, errUsage) {
			log.Errorln(err)
		}
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

func rootMain(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if len(args) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown subcommand: '%s'\n\n", args[0])
	}
	printUsage(cmd.ErrOrStderr())
	return errUsage
}

func initClient(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if noProgress {
		if err := param.Set(param.Download_ShowProgress.GetName(), false); err != nil {
			return err
		}
	}
	return config.InitClient()
}

func initConfig() {
	cobra.CheckErr(config.InitConfig())
}

// bindFlags connects each named flag in flags to its viper key
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flagName, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			panic(err)
		}
	}
}

// bindRootFlags connects the global flags to their viper keys; it must be
// repeated after viper is reset.
func bindRootFlags() {
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"config":   "config",
		"debug":    param.Debug.GetName(),
		"log":      param.Logging_LogLocation.GetName(),
		"endpoint": param.Historical_Endpoint.GetName(),
		"account":  param.Historical_Account.GetName(),
		"insecure": param.TLSSkipVerify.GetName(),
	})
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			printUsage(cmd.ErrOrStderr())
			return
		}
		defaultHelp(cmd, args)
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/histjob/histjob.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logs")
	rootCmd.PersistentFlags().StringP("log", "l", "", "Specified log output file")
	rootCmd.PersistentFlags().String("endpoint", "", "Override the API endpoint (default is derived from the account)")
	rootCmd.PersistentFlags().String("account", "", "Account name used to build the API endpoint (default \""+config.DefaultAccount+"\")")
	rootCmd.PersistentFlags().Bool("insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Do not show download progress")

	bindRootFlags()
}
