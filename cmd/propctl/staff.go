package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/domain"
)

func (a *app) staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff members",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			staff, err := a.client.ListStaff(ctx)
			if err != nil {
				return remoteErr(err)
			}
			if asJSON {
				return printJSON(a.out, staff)
			}
			rows := make([][]string, 0, len(staff))
			for _, s := range staff {
				rows = append(rows, []string{s.ID, s.Name, s.Role, s.Email, s.Phone, s.Status, strconv.Itoa(s.Performance) + "%"})
			}
			printTable(a.out, []string{"ID", "Name", "Role", "Email", "Phone", "Status", "Performance"}, rows)
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var form domain.NewStaff
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a staff member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Normalize()
			if err := form.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			s, err := a.client.AddStaff(ctx, form)
			if err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Added %s (%s)\n", s.Name, s.ID)
			return nil
		},
	}
	add.Flags().StringVar(&form.Name, "name", "", "full name")
	add.Flags().StringVar(&form.Role, "role", "", "role")
	add.Flags().StringVar(&form.Email, "email", "", "email address")
	add.Flags().StringVar(&form.Phone, "phone", "", "phone number")

	status := &cobra.Command{
		Use:   "status <id> <active|inactive>",
		Short: "Activate or deactivate a staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := domain.StaffStatusUpdate{Status: args[1]}
			if err := update.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			s, err := a.client.SetStaffStatus(ctx, args[0], update)
			if err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "%s is now %s\n", args[0], s.Status)
			return nil
		},
	}

	txs := &cobra.Command{
		Use:   "transactions <id>",
		Short: "List transactions recorded by a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			items, err := a.client.StaffTransactions(ctx, args[0])
			if err != nil {
				return remoteErr(err)
			}
			rows := make([][]string, 0, len(items))
			for _, t := range items {
				rows = append(rows, []string{t.Time, t.Type, t.Category, money(t.Amount), t.Description})
			}
			printTable(a.out, []string{"Time", "Type", "Category", "Amount", "Description"}, rows)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a staff member",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.client.DeleteStaff(ctx, args[0]); err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, status, txs, remove)
	return cmd
}
