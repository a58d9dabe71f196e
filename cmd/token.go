package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/playmark/playmark/auth"
	"github.com/playmark/playmark/icon"
	"github.com/playmark/playmark/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd, tokenDeleteCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bearer token sent to the telemetry backend",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the telemetry token in the system keyring",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		prompt := survey.Password{
			Message: "Telemetry token",
		}
		var token string
		handleErr(survey.AskOne(&prompt, &token, survey.WithValidator(survey.Required)))

		token = strings.TrimSpace(token)
		if token == "" {
			handleErr(errors.New("empty token"))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s Token saved\n", style.Fg(style.Green)(icon.Get(icon.Success)))
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Remove the telemetry token from the system keyring",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s Token removed\n", style.Fg(style.Green)(icon.Get(icon.Success)))
	},
}
