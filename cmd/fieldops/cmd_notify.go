package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fieldops/internal/schedule"
	"fieldops/internal/types"
)

var notifyFlags struct {
	title     string
	message   string
	recipient string
	warning   bool
}

// notifyCmd appends an admin-to-field notification. Empty recipient means
// broadcast. Notifications are immutable once written.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a notification to one promoter or broadcast to all (admin only)",
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
		if session.Role != types.RoleAdmin {
			return fmt.Errorf("only admins can send notifications")
		}
		if notifyFlags.title == "" || notifyFlags.message == "" {
			return fmt.Errorf("--title and --message are required")
		}

		kind := types.NotificationAnnouncement
		if notifyFlags.warning {
			kind = types.NotificationWarning
		}
		n := types.Notification{
			ID:        schedule.MintID(),
			Title:     notifyFlags.title,
			Message:   notifyFlags.message,
			Type:      kind,
			Recipient: notifyFlags.recipient,
			CreatedAt: time.Now(),
		}
		if err := a.store.AppendNotification(n); err != nil {
			return err
		}

		if n.Recipient == "" {
			fmt.Println("Broadcast sent:", n.Title)
		} else {
			fmt.Printf("Sent to %s: %s\n", n.Recipient, n.Title)
		}
		return nil
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyFlags.title, "title", "", "notification title")
	notifyCmd.Flags().StringVar(&notifyFlags.message, "message", "", "notification body")
	notifyCmd.Flags().StringVar(&notifyFlags.recipient, "to", "", "recipient promoter id (empty = broadcast)")
	notifyCmd.Flags().BoolVar(&notifyFlags.warning, "warning", false, "mark as a warning instead of an announcement")
}
