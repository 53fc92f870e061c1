package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/iocache"
	"github.com/huangsam/cgmprep/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// storeManager is the global run ledger manager instance.
var storeManager contract.StoreManager

// logger is built once the configuration is validated.
var logger = zap.NewNop()

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "cgmprep",
	Short:              "Clean glucose monitor exports into model-ready feature tables.",
	Long:               `cgmprep turns the day sheets of a continuous glucose monitor export into one clean, numeric table.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSource()

	// Set environment variable prefix
	viper.SetEnvPrefix("CGMPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults in Viper
	viper.SetDefault("workbook", contract.DefaultWorkbook)
	viper.SetDefault("days", fmt.Sprint(contract.DefaultDays))
	viper.SetDefault("header-row", contract.DefaultHeaderRow)
	viper.SetDefault("drop", strings.Join(schema.DefaultDropColumns, ","))
	viper.SetDefault("sampling-interval", algo.DefaultSamplingInterval.String())
	viper.SetDefault("overrun-threshold", algo.DefaultOverrunThreshold)
	viper.SetDefault("gap-markers", strings.Join(algo.DefaultGapMarkers, ","))
	viper.SetDefault("glucose-precision", contract.DefaultGlucosePrecision)
	viper.SetDefault("other-activity", contract.DefaultOtherActivity)
	viper.SetDefault("limit", contract.DefaultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("runs-backend", schema.SQLiteBackend)
	viper.SetDefault("runs-db-connect", "")
	viper.SetDefault("color", "yes")
}

// setConfigSource points viper at --config or at .cgmprep.yaml in the usual places.
func setConfigSource() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".cgmprep") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	return setup(args, contract.ProcessAndValidate)
}

// serverSetup is sharedSetup without the sheet range, which MCP clients send per call.
func serverSetup(_ context.Context, _ *cobra.Command, args []string) error {
	return setup(args, contract.ProcessServerConfig)
}

// setup resolves all config sources, validates them with validate and
// initializes logging and the run ledger.
func setup(args []string, validate func(*contract.Config, *contract.ConfigRawInput) error) error {
	// Handle profiling flag
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. A positional argument names the workbook.
	if len(args) == 1 {
		input.Workbook = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := validate(cfg, input); err != nil {
		return err
	}

	// 5. Build the logger now that verbosity is known.
	built, err := contract.NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = built

	// 6. Initialize the run ledger with validated config
	if err := iocache.InitStores(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run ledger: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigSource()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global run ledger manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = logger.Sync()
}
