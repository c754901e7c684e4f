package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/supplylens/backend/internal/usecase"
)

func newExtractCmd() *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract a product page and print it with its validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *usecase.ExtractionService
			return runWith(cmd, func(ctx context.Context) error {
				if store {
					result, err := svc.Import(ctx, args[0])
					if err != nil && result == nil {
						return err
					}
					if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
						return perr
					}
					return err
				}

				product, err := svc.Extract(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"product":    product,
					"validation": svc.Validate(product),
				})
			}, &svc)
		},
	}

	cmd.Flags().BoolVar(&store, "import", false, "store the product when it passes validation")
	return cmd
}
