package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supplylens/backend/internal/domain"
)

func newPlatformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platform [id]",
		Short: "Print a supplier platform profile, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				profiles := make([]domain.PlatformProfile, 0)
				for _, id := range domain.SupplierPlatforms() {
					if p, ok := domain.GetPlatformProfile(id); ok {
						profiles = append(profiles, p)
					}
				}
				return printJSON(cmd.OutOrStdout(), profiles)
			}

			profile, ok := domain.GetPlatformProfile(domain.PlatformID(strings.ToLower(args[0])))
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrPlatformNotFound, args[0])
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}
