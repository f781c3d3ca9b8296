package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aura-platform/usercenter/internal/tenants"
)

func newPlatformCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Manage platform tenant membership",
	}

	var roles []string
	addMember := &cobra.Command{
		Use:   "add-member <user-id>",
		Short: "Add a user to the platform tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			if _, err := a.platform.GetPlatformTenant(cmd.Context()); err != nil {
				return err
			}
			m, err := a.platform.AddPlatformMember(cmd.Context(), userID, roles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to platform with roles %v\n", m.UserID, m.Roles)
			return nil
		},
	}
	addMember.Flags().StringSliceVar(&roles, "role", []string{tenants.RolePlatformAdmin}, "roles to grant (repeatable)")

	check := &cobra.Command{
		Use:   "check <user-id>",
		Short: "Show whether a user is a platform member or admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			member, err := a.platform.IsPlatformMember(cmd.Context(), userID)
			if err != nil {
				return err
			}
			admin, err := a.platform.IsPlatformAdmin(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member: %t\nadmin: %t\n", member, admin)
			return nil
		},
	}

	cmd.AddCommand(addMember, check)
	return cmd
}
