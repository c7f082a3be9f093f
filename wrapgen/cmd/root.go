// Package cmd provides the command-line interface of wrapgen.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that provide flag defaults.
const (
	envOutputDir = "WRAPGEN_OUTPUT_DIR"
	envLogLevel  = "WRAPGEN_LOG_LEVEL"
	envRecord    = "WRAPGEN_RECORD"
	envPort      = "WRAPGEN_PORT"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wrapgen",
	Short: "wrapgen generates Verilator wrappers for handshake kernels.",
	Long: `wrapgen generates the C++ wrapper class that lets a simulation driver ` +
		`feed a kernel's arguments into its Verilator model and collect the ` +
		`results. The kernel is described by a function signature, a reference ` +
		`function and a hardware module, all read from YAML design documents.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(stringFlagOrEnv(cmd, "log-level", envLogLevel))
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		opts, err := readOptions(cmd, true)
		if err != nil {
			return err
		}

		rec, err := openRecorder(stringFlagOrEnv(cmd, "record", envRecord))
		if err != nil {
			return err
		}
		if rec != nil {
			defer rec.Close()
		}

		path, err := runGenerate(opts, rec, true)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrapper written to %s\n", path)

		return nil
	},
}

func init() {
	addGenerateFlags(rootCmd)
	rootCmd.Flags().StringP("output", "o", "",
		"output directory (default $"+envOutputDir+")")
	rootCmd.Flags().String("record", "",
		"record the run into this SQLite database (default $"+envRecord+")")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level: debug, info, warn or error (default $"+envLogLevel+" or warn)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// stringFlagOrEnv returns the flag value if it was set on the command line
// and the environment variable otherwise.
func stringFlagOrEnv(cmd *cobra.Command, flag, env string) string {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return f.Value.String()
	}

	if v, ok := os.LookupEnv(env); ok {
		return v
	}

	if f != nil {
		return f.Value.String()
	}

	return ""
}
