package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldops/internal/summary"
	"fieldops/internal/types"
	"fieldops/internal/visibility"
)

var summarizePrompt string

// summarizeCmd feeds the caller's visible activities to the text-generation
// collaborator and prints the result.
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate a text report over visible activities",
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

		s, err := summary.NewSummarizer(cmd.Context(), a.cfg.Summary.APIKey, a.cfg.Summary.Model)
		if err != nil {
			return err
		}

		visible := visibility.Visible(a.store.Activities(), session.Role, session.UserID, types.AdminScopeAll)
		var contextText string
		for _, act := range visible {
			contextText += fmt.Sprintf("- %s | %s | %s | %s | %s\n",
				act.Date, act.PromoterID, act.Community, act.Objective, act.Status)
		}

		text, err := s.Summarize(cmd.Context(), summarizePrompt, contextText)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizePrompt, "prompt",
		"Summarize the following field activities for a weekly report.",
		"instruction for the report generator")
}
