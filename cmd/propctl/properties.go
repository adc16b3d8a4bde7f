package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/domain"
)

// amountFlag reads a decimal amount from a string flag.
func amountFlag(name, raw string) (domain.Amount, error) {
	if raw == "" {
		return domain.Amount{Decimal: decimal.Zero}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return domain.Amount{Decimal: d}, nil
}

func (a *app) propertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property"},
		Short:   "Manage properties",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			props, err := a.client.ListProperties(ctx)
			if err != nil {
				return remoteErr(err)
			}
			if asJSON {
				return printJSON(a.out, props)
			}
			rows := make([][]string, 0, len(props))
			for _, p := range props {
				rows = append(rows, []string{
					p.ID, p.Name, p.Location, strconv.Itoa(p.Rooms),
					strconv.FormatFloat(p.Occupancy, 'f', -1, 64) + "%",
					money(p.Revenue), money(p.Expenses), p.Status,
				})
			}
			printTable(a.out, []string{"ID", "Name", "Location", "Rooms", "Occupancy", "Revenue", "Expenses", "Status"}, rows)
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var form domain.NewProperty
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a property",
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
			p, err := a.client.AddProperty(ctx, form)
			if err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Added %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&form.Name, "name", "", "property name")
	add.Flags().StringVar(&form.Location, "location", "", "location")
	add.Flags().StringVar(&form.Image, "image", "", "image URL")
	add.Flags().IntVar(&form.Rooms, "rooms", 0, "number of rooms")
	add.Flags().StringVar(&form.Status, "status", domain.PropertyOperational, "Operational or Maintenance")

	var (
		laundry     domain.LaundryRecord
		laundryCost string
	)
	laundryCmd := &cobra.Command{
		Use:   "laundry <id>",
		Short: "Record a laundry batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := amountFlag("cost", laundryCost)
			if err != nil {
				return err
			}
			laundry.Cost = cost
			if err := laundry.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if _, err := a.client.RecordLaundry(ctx, args[0], laundry); err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Recorded %d items for %s\n", laundry.Items, args[0])
			return nil
		},
	}
	laundryCmd.Flags().IntVar(&laundry.Items, "items", 0, "number of items")
	laundryCmd.Flags().StringVar(&laundryCost, "cost", "", "total cost")
	laundryCmd.Flags().StringVar(&laundry.Notes, "notes", "", "notes")

	var (
		checkIn       domain.CheckIn
		checkInAmount string
	)
	checkInCmd := &cobra.Command{
		Use:   "check-in <id>",
		Short: "Record a guest check-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := amountFlag("amount", checkInAmount)
			if err != nil {
				return err
			}
			checkIn.Amount = amount
			if err := checkIn.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if _, err := a.client.CheckIn(ctx, args[0], checkIn); err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Checked in %s to room %s\n", checkIn.GuestName, checkIn.Room)
			return nil
		},
	}
	checkInCmd.Flags().StringVar(&checkIn.GuestName, "guest", "", "guest name")
	checkInCmd.Flags().StringVar(&checkIn.Room, "room", "", "room")
	checkInCmd.Flags().IntVar(&checkIn.Nights, "nights", 1, "nights")
	checkInCmd.Flags().StringVar(&checkInAmount, "amount", "", "amount charged")

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a property",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.client.DeleteProperty(ctx, args[0]); err != nil {
				return remoteErr(err)
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, laundryCmd, checkInCmd, remove)
	return cmd
}
