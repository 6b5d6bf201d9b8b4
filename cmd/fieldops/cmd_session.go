package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fieldops/internal/types"
)

var loginRole string

// loginCmd persists the session identity so a later invocation resumes it.
var loginCmd = &cobra.Command{
	Use:   "login [promoter-id]",
	Short: "Log in as a promoter and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		userID := args[0]
		role := types.ParseRole(loginRole)
		if err := a.store.SetSession(types.Session{UserID: userID, Role: role}); err != nil {
			return err
		}

		// Mark the promoter online and stamp the connection time, creating
		// the record on first login.
		err = a.store.UpdatePromoters(func(promoters []types.Promoter) []types.Promoter {
			for i := range promoters {
				if promoters[i].ID == userID {
					promoters[i].Online = true
					promoters[i].LastConnection = time.Now()
					promoters[i].Role = role
					return promoters
				}
			}
			return append(promoters, types.Promoter{
				ID:             userID,
				Name:           userID,
				Role:           role,
				Online:         true,
				LastConnection: time.Now(),
			})
		})
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s)\n", userID, role)
		return nil
	},
}

// logoutCmd clears the session and marks the promoter offline.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session := a.store.Session()
		if session.Active() {
			err = a.store.UpdatePromoters(func(promoters []types.Promoter) []types.Promoter {
				for i := range promoters {
					if promoters[i].ID == session.UserID {
						promoters[i].Online = false
						promoters[i].LastConnection = time.Now()
					}
				}
				return promoters
			})
			if err != nil {
				return err
			}
		}

		if err := a.store.ClearSession(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginRole, "role", "FIELD_PROMOTER", "session role: ADMIN or FIELD_PROMOTER")
}
