package pgpkeeper

import (
	"fmt"
	"os"

	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var setKeyserver string
var setAutoSign bool
var setPreferInline bool

func init() {
	settingsCmd.AddCommand(settingsShow)
	settingsCmd.AddCommand(settingsSet)

	settingsSet.Flags().StringVar(&setKeyserver, "keyserver", "", "Keyserver URL for contact fetches")
	settingsSet.Flags().BoolVar(&setAutoSign, "auto-sign", false, "Sign every encrypted message with the default keypair")
	settingsSet.Flags().BoolVar(&setPreferInline, "prefer-inline", false, "Prefer inline PGP over attachments")
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
}

var settingsShow = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		settings, err := m.Settings().Get()
		if err != nil {
			return err
		}

		defaultKeypair := "-"
		if settings.DefaultKeypairID != nil {
			if kp, err := m.Keypairs().GetByID(*settings.DefaultKeypairID); err == nil && kp != nil {
				defaultKeypair = fmt.Sprintf("%s <%s>", kp.Name, kp.Email)
			}
		} else if kp, err := m.GetDefaultKeypair(); err == nil {
			defaultKeypair = fmt.Sprintf("%s <%s>", kp.Name, kp.Email)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Setting", "Value"})
		table.Append([]string{"Default keypair", defaultKeypair})
		table.Append([]string{"Auto-sign messages", utils.YesNo(settings.AutoSignMessages)})
		table.Append([]string{"Prefer inline PGP", utils.YesNo(settings.PreferInlinePGP)})
		table.Append([]string{"Keyserver", settings.KeyserverURL})
		table.Render()

		return nil
	},
}

var settingsSet = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if cmd.Flags().Changed("keyserver") {
			fields["keyserver_url"] = setKeyserver
		}
		if cmd.Flags().Changed("auto-sign") {
			fields["auto_sign_messages"] = setAutoSign
		}
		if cmd.Flags().Changed("prefer-inline") {
			fields["prefer_inline_pgp"] = setPreferInline
		}
		if len(fields) == 0 {
			return cmd.Help()
		}

		return m.Settings().Update(fields)
	},
}
