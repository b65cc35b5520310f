package contacts

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/freetocompute/pgpkeeper/config/configkey"
	"github.com/freetocompute/pgpkeeper/pkg/clipboard"
	"github.com/freetocompute/pgpkeeper/pkg/keyserver"
	"github.com/freetocompute/pgpkeeper/pkg/manager"
	"github.com/freetocompute/pgpkeeper/pkg/prompt"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fromClipboard bool
var contactName string
var fetchEmail string
var fetchFingerprint string

func init() {
	Contacts.AddCommand(list)
	Contacts.AddCommand(importCmd)
	Contacts.AddCommand(fetch)
	Contacts.AddCommand(rename)
	Contacts.AddCommand(trust)
	Contacts.AddCommand(untrust)
	Contacts.AddCommand(notes)
	Contacts.AddCommand(deleteCmd)

	importCmd.Flags().BoolVarP(&fromClipboard, "clipboard", "c", false, "Autodetect an armored public key in the clipboard")
	importCmd.Flags().StringVarP(&contactName, "name", "n", "", "Contact name")

	fetch.Flags().StringVarP(&fetchEmail, "email", "e", "", "Look up the key by email")
	fetch.Flags().StringVarP(&fetchFingerprint, "fingerprint", "f", "", "Look up the key by fingerprint")
	fetch.Flags().StringVarP(&contactName, "name", "n", "", "Contact name")
}

var Contacts = &cobra.Command{
	Use:   "contacts",
	Short: "Manage other parties' public keys",
}

var list = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		contacts, err := m.Contacts().List(nil)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Email", "Key ID", "Trusted", "Verified", "Revoked"})
		for _, contact := range contacts {
			table.Append([]string{
				fmt.Sprintf("%d", contact.ID),
				contact.Name,
				contact.Email,
				contact.ShortFingerprint(),
				utils.YesNo(contact.Trusted),
				utils.FormatTime(contact.LastVerifiedAt),
				utils.YesNo(contact.Revoked),
			})
		}
		table.Render()

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a contact's public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		var publicArmored string
		if fromClipboard {
			block, ok, err := clipboard.ReadArmoredBlock(clipboard.PublicKeyBlock)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no armored public key found in the clipboard")
			}
			publicArmored = block
		} else {
			publicArmored, err = prompt.ReadMultiline("Paste the armored public key, end with a '.' line:")
			if err != nil {
				return err
			}
		}

		contact, err := m.ImportContact(contactName, publicArmored)
		if err != nil {
			return err
		}

		color.Green("Imported contact %s <%s> (%s)", contact.Name, contact.Email, contact.ShortFingerprint())
		return nil
	},
}

var fetch = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a contact's public key from the keyserver",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchEmail == "" && fetchFingerprint == "" {
			return errors.New("either --email or --fingerprint is required")
		}

		m, err := utils.Manager()
		if err != nil {
			return err
		}

		settings, err := m.Settings().Get()
		if err != nil {
			return err
		}
		url := settings.KeyserverURL
		if url == "" {
			url = viper.GetString(configkey.KeyserverURL)
		}

		client := keyserver.New(url)
		var publicArmored string
		if fetchFingerprint != "" {
			publicArmored, err = client.FetchByFingerprint(strings.ReplaceAll(fetchFingerprint, " ", ""))
		} else {
			publicArmored, err = client.FetchByEmail(fetchEmail)
		}
		if err != nil {
			return err
		}

		contact, err := m.ImportContact(contactName, publicArmored)
		if err != nil {
			return err
		}

		color.Green("Fetched contact %s <%s> (%s)", contact.Name, contact.Email, contact.ShortFingerprint())
		return nil
	},
}

var rename = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		return m.RenameContact(id, args[1])
	},
}

var trust = &cobra.Command{
	Use:   "trust <id>",
	Short: "Mark a contact's key as verified and trusted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTrusted(args[0], true)
	},
}

var untrust = &cobra.Command{
	Use:   "untrust <id>",
	Short: "Withdraw trust from a contact's key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTrusted(args[0], false)
	},
}

func setTrusted(arg string, trusted bool) error {
	m, err := utils.Manager()
	if err != nil {
		return err
	}

	id, err := utils.ParseID(arg)
	if err != nil {
		return err
	}
	if err := m.SetContactTrusted(id, trusted); err != nil {
		if errors.Is(err, manager.ErrNotFound) {
			return errors.Errorf("no contact with id %d", id)
		}
		return err
	}

	if trusted {
		color.Green("Contact %d marked trusted", id)
	} else {
		color.Yellow("Contact %d marked untrusted; the last verification time is kept", id)
	}
	return nil
}

var notes = &cobra.Command{
	Use:   "notes <id> <notes>",
	Short: "Attach free-text notes to a contact",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		return m.EditContactNotes(id, strings.Join(args[1:], " "))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}

		confirmed := prompt.Confirm(fmt.Sprintf("Delete contact %d?", id))
		deleted, err := m.DeleteContact(id, confirmed)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Delete cancelled.")
			return nil
		}

		color.Green("Contact %d deleted", id)
		return nil
	},
}
