package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is the release version of provisor.
const Version = "0.3.0"

func main() {
	// Configure zerolog
	zerolog.CallerMarshalFunc = func( //nolint:reassign // Override the default caller marshal function
		_ uintptr, file string, line int,
	) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}
	log.Logger = log.Output( //nolint:reassign // Override the default logger
		zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Caller().
		Timestamp().
		Logger()

	// Set up the root command
	cmd := &cobra.Command{
		Use:     "provisor",
		Short:   "Resolve configured model and datasource clients",
		Version: Version,
	}

	// Add flags to the root command
	cmd.PersistentFlags().StringP("config", "c", "", "Path to provisor config file")

	cmd.AddCommand(
		newModelsCommand(),
		newDatasourcesCommand(),
		newProvidersCommand(),
		newResolveCommand(),
	)

	// Execute the root command
	err := cmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to execute root command")
	}
}
