package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"yangstage/internal/app"
	"yangstage/internal/types"
)

type schemasOptions struct {
	Device deviceOptions
	Match  []string
}

func newSchemasCommand() *cobra.Command {
	opts := schemasOptions{}
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List the schema modules the device advertises",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemas(cmd.Context(), cmd, opts)
		},
	}
	addDeviceFlags(cmd, &opts.Device)
	cmd.Flags().StringSliceVar(&opts.Match, "match", nil, "Only list identifiers matching these glob patterns")
	return cmd
}

func runSchemas(ctx context.Context, cmd *cobra.Command, opts schemasOptions) error {
	service := newAppService()
	result, err := service.ListSchemas(ctx, app.ListSchemasRequest{
		Device: resolveDevice(cmd, opts.Device),
		Match:  opts.Match,
	})
	if err != nil {
		return err
	}
	renderSchemas(os.Stdout, result.Schemas)
	return nil
}

func renderSchemas(w io.Writer, schemas []types.SchemaDescriptor) {
	if len(schemas) == 0 {
		_, _ = fmt.Fprintln(w, "(0 schemas)")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Identifier", "Version", "Format", "Namespace"})
	for _, schema := range schemas {
		t.AppendRow(table.Row{schema.Identifier, schema.Version, schema.Format, schema.Namespace})
	}
	t.Render()
}
