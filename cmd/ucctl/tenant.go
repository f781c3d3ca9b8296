package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aura-platform/usercenter/internal/models"
)

func newTenantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	var typ string
	create := &cobra.Command{
		Use:   "create <code> <name>",
		Short: "Create a tenant with its root organization unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tenants.CreateTenant(cmd.Context(), args[0], args[1], models.TenantType(typ))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tenant %s (%s)\n", t.Code, t.ID)
			return nil
		},
	}
	create.Flags().StringVar(&typ, "type", string(models.TenantTypeCustomer), "INTERNAL, CUSTOMER or PARTNER")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []models.Tenant
				err  error
			)
			if all {
				list, err = a.tenants.ListTenants(cmd.Context())
			} else {
				list, err = a.tenants.ListBusinessTenants(cmd.Context())
			}
			if err != nil {
				return err
			}
			printTenants(cmd, list)
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include the platform tenant")

	cmd.AddCommand(create, list)
	return cmd
}

func printTenants(cmd *cobra.Command, list []models.Tenant) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tTYPE\tSTATUS")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Code, t.Name, t.Type, t.Status)
	}
	w.Flush()
}
