package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yangstage/internal/app"
)

type createConfigOptions struct {
	Device               deviceOptions
	Schemas              []string
	Data                 string
	SearchPath           string
	OutputDir            string
	Compiler             string
	CompilerFormat       string
	Transitive           bool
	FailOnMissingImports bool
}

func newCreateConfigCommand() *cobra.Command {
	opts := createConfigOptions{}
	cmd := &cobra.Command{
		Use:   "create-config",
		Short: "Fetch schemas with their imports from the device and compile each one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateConfig(cmd.Context(), cmd, opts)
		},
	}
	addDeviceFlags(cmd, &opts.Device)
	cmd.Flags().StringSliceVar(&opts.Schemas, "schema", nil, "Schema module(s) to resolve")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Configuration data file (YAML mapping)")
	cmd.Flags().StringVar(&opts.SearchPath, "search-path", app.DefaultSearchPath, "Directory the schema modules are staged in")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "", "Directory for compiler output (default: search path)")
	cmd.Flags().StringVar(&opts.Compiler, "compiler", "pyang", "Schema compiler executable")
	cmd.Flags().StringVar(&opts.CompilerFormat, "compiler-format", "sample-xml-skeleton", "Compiler output format")
	cmd.Flags().BoolVar(&opts.Transitive, "transitive", true, "Resolve imports of imported modules")
	cmd.Flags().BoolVar(&opts.FailOnMissingImports, "fail-on-missing-imports", false, "Fail when an import is not advertised by the device")

	_ = viper.BindPFlag("schema", cmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("data", cmd.Flags().Lookup("data"))
	_ = viper.BindPFlag("search_path", cmd.Flags().Lookup("search-path"))
	_ = viper.BindPFlag("output_dir", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("compiler", cmd.Flags().Lookup("compiler"))
	_ = viper.BindPFlag("compiler_format", cmd.Flags().Lookup("compiler-format"))
	_ = viper.BindPFlag("transitive_dependencies", cmd.Flags().Lookup("transitive"))
	_ = viper.BindPFlag("fail_on_missing_imports", cmd.Flags().Lookup("fail-on-missing-imports"))
	return cmd
}

func runCreateConfig(ctx context.Context, cmd *cobra.Command, opts createConfigOptions) error {
	service := newAppService()
	result, err := service.CreateConfig(ctx, app.CreateConfigRequest{
		Device:               resolveDevice(cmd, opts.Device),
		Schemas:              resolveStrings(cmd, opts.Schemas, "schema", "schema"),
		DataPath:             resolveString(cmd, opts.Data, "data", "data"),
		SearchPath:           resolveString(cmd, opts.SearchPath, "search_path", "search-path"),
		OutputDir:            resolveString(cmd, opts.OutputDir, "output_dir", "output"),
		Compiler:             resolveString(cmd, opts.Compiler, "compiler", "compiler"),
		CompilerFormat:       resolveString(cmd, opts.CompilerFormat, "compiler_format", "compiler-format"),
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
		fmt.Printf("compiled: %s (%d dependencies) -> %s\n", module.Root, len(module.Dependencies), module.Compiler.OutputFile)
	}
	fmt.Printf("changed: %t\n", result.Changed)
	return nil
}
