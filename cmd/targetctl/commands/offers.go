package commands

import (
	"errors"

	"github.com/spf13/cobra"

	offerservice "targetkit/internal/offer/service"
)

func newOffersCommand(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offers",
		Short: "Offer lookups against the upstream API",
	}

	var workspaceID string
	resolve := &cobra.Command{
		Use:   "resolve OFFER_ID",
		Short: "Find an offer, falling back across workspaces on 404/403",
		Long: `Looks the offer up in --workspace (the default workspace when omitted).
If that workspace answers not found or forbidden, every other configured
workspace is tried in declared order until one returns the offer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := rt.catalog()
			if err != nil {
				return err
			}
			resolver := offerservice.NewResolver(rt.offers(), catalog, offerservice.WithResolverLogger(rt.Logger))
			res, err := resolver.Resolve(cmd.Context(), args[0], workspaceID)
			if err != nil {
				if errors.Is(err, offerservice.ErrNotFoundAcrossWorkspaces) {
					warn(cmd.ErrOrStderr(), "offer %s was not found in any of %d workspaces", args[0], len(catalog.All()))
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	resolve.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Preferred workspace id")

	cmd.AddCommand(resolve)
	return cmd
}
