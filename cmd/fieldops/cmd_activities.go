package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldops/internal/schedule"
	fieldsync "fieldops/internal/sync"
	"fieldops/internal/types"
	"fieldops/internal/visibility"
)

var (
	listScope string

	createFlags struct {
		owner      string
		assignedTo string
		community  string
		objective  string
		date       string
		timeOfDay  string
		status     string
	}

	updateFlags struct {
		status       string
		agreements   string
		proposals    string
		observations string
		note         string
	}
)

// listCmd prints the caller's visible slice of the local activity collection.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible activities from the local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}

		visible := visibility.Visible(a.store.Activities(), session.Role, session.UserID, listScope)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tOWNER\tDATE\tCOMMUNITY\tOBJECTIVE\tSTATUS")
		for _, act := range visible {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				act.ID, act.PromoterID, act.Date, act.Community, act.Objective, act.Status)
		}
		return w.Flush()
	},
}

// createCmd sends one activity to the remote store and refreshes.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an activity in the remote store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}
		if createFlags.objective == "" {
			return fmt.Errorf("--objective is required")
		}

		activity := types.Activity{
			ID:         schedule.MintID(),
			PromoterID: createFlags.owner,
			AssignedTo: createFlags.assignedTo,
			Community:  createFlags.community,
			Objective:  createFlags.objective,
			Date:       createFlags.date,
			Time:       createFlags.timeOfDay,
			Status:     types.Status(createFlags.status),
		}
		if err := a.engine.Create(cmd.Context(), activity, session); err != nil {
			return err
		}
		fmt.Println("Created:", activity.Objective)
		return nil
	},
}

// updateCmd applies a local-only field merge to one activity.
var updateCmd = &cobra.Command{
	Use:   "update [activity-id]",
	Short: "Edit an activity locally (no remote call)",
	Long: `Applies a field-level merge to one activity in the local store. The remote
store has no update endpoint, so this change stays on this client until the
activity is recreated or the backend grows update support.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}

		var patch fieldsync.Patch
		if cmd.Flags().Changed("status") {
			s := types.Status(updateFlags.status)
			patch.Status = &s
		}
		if cmd.Flags().Changed("agreements") {
			patch.Agreements = &updateFlags.agreements
		}
		if cmd.Flags().Changed("proposals") {
			patch.Proposals = &updateFlags.proposals
		}
		if cmd.Flags().Changed("observations") {
			patch.Observations = &updateFlags.observations
		}
		if cmd.Flags().Changed("note") {
			patch.AppendNote = &types.ObservationNote{
				ID:       schedule.MintID(),
				AuthorID: session.UserID,
				Text:     updateFlags.note,
			}
		}

		if err := a.engine.UpdateLocal(args[0], patch); err != nil {
			return err
		}
		fmt.Println("Updated", args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listScope, "promoter", types.AdminScopeAll,
		"admin only: restrict the listing to one promoter id")

	createCmd.Flags().StringVar(&createFlags.owner, "owner", "", "owning promoter id (defaults to the session user)")
	createCmd.Flags().StringVar(&createFlags.assignedTo, "assign", "", "assignee promoter id")
	createCmd.Flags().StringVar(&createFlags.community, "community", "", "community")
	createCmd.Flags().StringVar(&createFlags.objective, "objective", "", "objective/title")
	createCmd.Flags().StringVar(&createFlags.date, "date", "", "date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&createFlags.timeOfDay, "time", "", "time (HH:MM)")
	createCmd.Flags().StringVar(&createFlags.status, "status", string(types.StatusPending), "initial status")

	updateCmd.Flags().StringVar(&updateFlags.status, "status", "", "new status")
	updateCmd.Flags().StringVar(&updateFlags.agreements, "agreements", "", "agreements text")
	updateCmd.Flags().StringVar(&updateFlags.proposals, "proposals", "", "proposals text")
	updateCmd.Flags().StringVar(&updateFlags.observations, "observations", "", "observations text")
	updateCmd.Flags().StringVar(&updateFlags.note, "note", "", "append an observation note")
}
