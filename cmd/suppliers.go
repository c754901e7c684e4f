package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/supplylens/backend/internal/domain"
	"github.com/supplylens/backend/internal/usecase"
)

type suppliersFlags struct {
	title           string
	price           string
	currency        string
	category        string
	brand           string
	source          string
	bypassCache     bool
	allowRestricted bool
}

func newSuppliersCmd() *cobra.Command {
	var f suppliersFlags

	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "Rank supplier candidates for a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := f.input()
			if err != nil {
				return err
			}
			opts := domain.SearchOptions{
				BypassCache:             f.bypassCache,
				AllowRestrictedPlatform: f.allowRestricted,
			}

			var svc *usecase.SupplierService
			return runWith(cmd, func(ctx context.Context) error {
				candidates, err := svc.DetectSuppliers(ctx, input, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"query":      usecase.PrimaryQuery(svc.Queries(input), input.Title),
					"candidates": candidates,
				})
			}, &svc)
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "product title (required)")
	cmd.Flags().StringVar(&f.price, "price", "0", "selling price")
	cmd.Flags().StringVar(&f.currency, "currency", "", "ISO currency code")
	cmd.Flags().StringVar(&f.category, "category", "", "product category")
	cmd.Flags().StringVar(&f.brand, "brand", "", "product brand")
	cmd.Flags().StringVar(&f.source, "source", "", "platform the product is sold on")
	cmd.Flags().BoolVar(&f.bypassCache, "bypass-cache", false, "ignore cached results")
	cmd.Flags().BoolVar(&f.allowRestricted, "allow-restricted", false, "include platforms that need a Chinese-speaking buyer")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (f suppliersFlags) input() (domain.SupplierSearchInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.price))
	if err != nil {
		return domain.SupplierSearchInput{}, fmt.Errorf("%w: price %q is not a number", domain.ErrInvalidRequest, f.price)
	}
	source := domain.PlatformID(strings.ToLower(f.source))
	if source != "" && !source.Valid() {
		return domain.SupplierSearchInput{}, fmt.Errorf("%w: unknown source platform %q", domain.ErrInvalidRequest, f.source)
	}
	return domain.SupplierSearchInput{
		Title:          f.title,
		Price:          price,
		Currency:       strings.ToUpper(f.currency),
		Category:       f.category,
		Brand:          f.brand,
		SourcePlatform: source,
	}, nil
}
