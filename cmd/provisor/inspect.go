package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oakenode/provisor/internal/config"
	"github.com/oakenode/provisor/internal/datasource"
	"github.com/oakenode/provisor/internal/llm"
	"github.com/oakenode/provisor/internal/provider"
)

func storeFromFlags(cmd *cobra.Command) *config.Store {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse the config flag")
	}
	return config.NewStore(configPath)
}

// printSelections lists the configured provider.kind pairs of one namespace,
// marking the default. Introspection only; no clients are constructed.
func printSelections(sels []provider.Selection, def provider.Selection) {
	for _, sel := range sels {
		marker := " "
		if sel == def {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, sel)
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Run: func(cmd *cobra.Command, _ []string) {
			factory := llm.NewFactory(storeFromFlags(cmd))
			sels, err := factory.Available()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list models")
			}
			def, err := factory.Default()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read default model selection")
			}
			printSelections(sels, def)
		},
	}
}

func newDatasourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasources",
		Short: "List configured datasources",
		Run: func(cmd *cobra.Command, _ []string) {
			factory := datasource.NewFactory(storeFromFlags(cmd))
			sels, err := factory.Available()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list datasources")
			}
			def, err := factory.Default()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read default datasource selection")
			}
			printSelections(sels, def)
		},
	}
}

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers per domain",
		Run: func(cmd *cobra.Command, _ []string) {
			store := storeFromFlags(cmd)
			for _, p := range llm.NewFactory(store).SupportedProviders() {
				fmt.Printf("llm: %s\n", p)
			}
			for _, p := range datasource.NewFactory(store).SupportedProviders() {
				fmt.Printf("datasources: %s\n", p)
			}
		},
	}
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <llm|datasources> <provider.kind>",
		Short: "Resolve and validate one configuration without constructing a client",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sel, err := provider.ParseSelection(args[1])
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse selection")
			}

			store := storeFromFlags(cmd)
			var res provider.Resolved
			switch args[0] {
			case llm.Namespace:
				res, err = llm.NewFactory(store).Resolve(sel.Kind, sel.Provider)
			case datasource.Namespace:
				res, err = datasource.NewFactory(store).Resolve(sel.Kind, sel.Provider)
			default:
				log.Fatal().Str("namespace", args[0]).Msg("Unknown namespace")
			}
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to resolve configuration")
			}

			fmt.Printf("%s: ok (%T)\n", res.Selection(), res.Config)
		},
	}
}
