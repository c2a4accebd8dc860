package commands

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"targetkit/internal/ledger/models"
)

func newLedgerCommand(rt *Runtime) *cobra.Command {
	var tenant, clientID string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or edit the ledger of activities created by this app",
		Long: `The ledger records which upstream activities were created through targetkit,
keyed by tenant and client id. Only ledger entries are touched here; nothing
is sent to the upstream API.

--tenant and --client-id default to TARGET_TENANT and TARGET_CLIENT_ID.`,
	}
	cmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant the entries belong to")
	cmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Client id the entries belong to")

	owner := func() (models.Owner, error) {
		o := models.Owner{Tenant: tenant, ClientID: clientID}
		if o.Tenant == "" {
			o.Tenant = rt.Config.Target.Tenant
		}
		if o.ClientID == "" {
			o.ClientID = rt.Config.Target.ClientID
		}
		if !o.Valid() {
			return o, errors.New("tenant and client id are required (flags or TARGET_TENANT / TARGET_CLIENT_ID)")
		}
		return o, nil
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every ledger entry in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := rt.ledger(cmd.Context())
			if err != nil {
				return err
			}
			entries := ledger.Entries(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, models.Document{Entries: entries})
			}
			if len(entries) == 0 {
				warn(out, "ledger is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID, e.Tenant, e.ClientID})
			}
			return table(out, []string{"ID", "TENANT", "CLIENT ID"}, rows)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print the ledger document as JSON")

	owned := &cobra.Command{
		Use:   "owned",
		Short: "Print the activity ids owned by a tenant and client id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := owner()
			if err != nil {
				return err
			}
			ledger, err := rt.ledger(cmd.Context())
			if err != nil {
				return err
			}
			ids := ledger.IDsOwnedBy(cmd.Context(), o).Slice()
			sort.Strings(ids)
			out := cmd.OutOrStdout()
			for _, id := range ids {
				if _, err := out.Write([]byte(id + "\n")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	record := &cobra.Command{
		Use:   "record ACTIVITY_ID",
		Short: "Mark an activity as created by this app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := owner()
			if err != nil {
				return err
			}
			ledger, err := rt.ledger(cmd.Context())
			if err != nil {
				return err
			}
			if err := ledger.Record(cmd.Context(), o, args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "recorded activity %s for %s/%s", args[0], o.Tenant, o.ClientID)
			return nil
		},
	}

	forget := &cobra.Command{
		Use:   "forget ACTIVITY_ID",
		Short: "Remove an activity from the ledger without deleting it upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := owner()
			if err != nil {
				return err
			}
			ledger, err := rt.ledger(cmd.Context())
			if err != nil {
				return err
			}
			if err := ledger.Forget(cmd.Context(), o, args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "forgot activity %s for %s/%s", args[0], o.Tenant, o.ClientID)
			return nil
		},
	}

	cmd.AddCommand(list, owned, record, forget)
	return cmd
}
