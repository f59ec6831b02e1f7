package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yangstage/internal/app"
)

type fetchOptions struct {
	Device               deviceOptions
	Schemas              []string
	SearchPath           string
	Transitive           bool
	FailOnMissingImports bool
}

func newFetchCommand() *cobra.Command {
	opts := fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Stage schemas and their imports in the search path without compiling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd.Context(), cmd, opts)
		},
	}
	addDeviceFlags(cmd, &opts.Device)
	cmd.Flags().StringSliceVar(&opts.Schemas, "schema", nil, "Schema module(s) to resolve")
	cmd.Flags().StringVar(&opts.SearchPath, "search-path", app.DefaultSearchPath, "Directory the schema modules are staged in")
	cmd.Flags().BoolVar(&opts.Transitive, "transitive", true, "Resolve imports of imported modules")
	cmd.Flags().BoolVar(&opts.FailOnMissingImports, "fail-on-missing-imports", false, "Fail when an import is not advertised by the device")

	_ = viper.BindPFlag("schema", cmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("search_path", cmd.Flags().Lookup("search-path"))
	_ = viper.BindPFlag("transitive_dependencies", cmd.Flags().Lookup("transitive"))
	_ = viper.BindPFlag("fail_on_missing_imports", cmd.Flags().Lookup("fail-on-missing-imports"))
	return cmd
}

func runFetch(ctx context.Context, cmd *cobra.Command, opts fetchOptions) error {
	service := newAppService()
	result, err := service.FetchSchemas(ctx, app.FetchRequest{
		Device:               resolveDevice(cmd, opts.Device),
		Schemas:              resolveStrings(cmd, opts.Schemas, "schema", "schema"),
		SearchPath:           resolveString(cmd, opts.SearchPath, "search_path", "search-path"),
		Transitive:           resolveBool(cmd, opts.Transitive, "transitive_dependencies", "transitive"),
		FailOnMissingImports: resolveBool(cmd, opts.FailOnMissingImports, "fail_on_missing_imports", "fail-on-missing-imports"),
	})
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	for _, module := range result.Modules {
		fmt.Printf("fetched: %s (%d files)\n", module.Root, len(module.Files))
	}
	fmt.Printf("manifest: %s\n", result.ManifestPath)
	return nil
}
