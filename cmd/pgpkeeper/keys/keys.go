package keys

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/freetocompute/pgpkeeper/pkg/clipboard"
	"github.com/freetocompute/pgpkeeper/pkg/gpgring"
	"github.com/freetocompute/pgpkeeper/pkg/prompt"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fromClipboard bool
var makeDefault bool
var displayName string
var genName string
var genEmail string
var revokeReason string

func init() {
	Keys.AddCommand(list)
	Keys.AddCommand(show)
	Keys.AddCommand(importCmd)
	Keys.AddCommand(generate)
	Keys.AddCommand(importGPG)
	Keys.AddCommand(setDefault)
	Keys.AddCommand(rename)
	Keys.AddCommand(revoke)
	Keys.AddCommand(deleteCmd)

	importCmd.Flags().BoolVarP(&fromClipboard, "clipboard", "c", false, "Autodetect armored keys in the clipboard")
	importCmd.Flags().BoolVarP(&makeDefault, "default", "d", false, "Make this the default keypair")
	importCmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name for the keypair")

	generate.Flags().StringVar(&genName, "name", "", "Name for the embedded user id")
	generate.Flags().StringVar(&genEmail, "email", "", "Email for the embedded user id")
	generate.Flags().StringVar(&displayName, "display-name", "", "Display name for the keypair")
	generate.Flags().BoolVarP(&makeDefault, "default", "d", false, "Make this the default keypair")
	_ = generate.MarkFlagRequired("name")
	_ = generate.MarkFlagRequired("email")

	importGPG.Flags().BoolVarP(&makeDefault, "default", "d", false, "Make this the default keypair")
	importGPG.Flags().StringVarP(&displayName, "name", "n", "", "Display name for the keypair")

	revoke.Flags().StringVarP(&revokeReason, "reason", "r", "", "Reason for revocation")
}

var Keys = &cobra.Command{
	Use:   "keys",
	Short: "Manage your personal keypairs",
}

var list = &cobra.Command{
	Use:   "list",
	Short: "List stored keypairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		keypairs, err := m.Keypairs().List(nil)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Email", "Key ID", "Algorithm", "Default", "Revoked", "Expires"})
		for _, kp := range keypairs {
			table.Append([]string{
				fmt.Sprintf("%d", kp.ID),
				kp.Name,
				kp.Email,
				kp.ShortFingerprint(),
				kp.Algorithm,
				utils.YesNo(kp.IsDefault),
				utils.YesNo(kp.Revoked),
				utils.FormatTime(kp.ExpiresAt),
			})
		}
		table.Render()

		return nil
	},
}

var show = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full keypair metadata",
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
		kp, err := m.Keypairs().GetByID(id)
		if err != nil {
			return err
		}
		if kp == nil {
			return errors.Errorf("no keypair with id %d", id)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Field", "Value"})
		table.Append([]string{"Name", kp.Name})
		table.Append([]string{"Email", kp.Email})
		table.Append([]string{"Fingerprint", kp.Fingerprint})
		table.Append([]string{"Algorithm", kp.Algorithm})
		table.Append([]string{"Key size", kp.KeySize})
		table.Append([]string{"Passphrase protected", utils.YesNo(kp.PassphraseProtected)})
		table.Append([]string{"Can sign", utils.YesNo(kp.CanSign)})
		table.Append([]string{"Can encrypt", utils.YesNo(kp.CanEncrypt)})
		table.Append([]string{"Can certify", utils.YesNo(kp.CanCertify)})
		table.Append([]string{"Can authenticate", utils.YesNo(kp.CanAuthenticate)})
		table.Append([]string{"Expires", utils.FormatTime(kp.ExpiresAt)})
		table.Append([]string{"Revoked", utils.YesNo(kp.Revoked)})
		if kp.Revoked && kp.RevocationReason != "" {
			table.Append([]string{"Revocation reason", kp.RevocationReason})
		}
		table.Append([]string{"Default", utils.YesNo(kp.IsDefault)})
		table.Append([]string{"Last used", utils.FormatTime(kp.LastUsedAt)})
		table.Append([]string{"Created", kp.CreatedAt.Format("2006-01-02 15:04")})
		table.Render()

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a keypair from the clipboard or pasted text",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		var publicArmored, privateArmored string
		if fromClipboard {
			text, err := clipboard.Read()
			if err != nil {
				return err
			}
			var ok bool
			publicArmored, ok = clipboard.FindArmoredBlock(text, clipboard.PublicKeyBlock)
			if !ok {
				return errors.New("no armored public key found in the clipboard")
			}
			privateArmored, ok = clipboard.FindArmoredBlock(text, clipboard.PrivateKeyBlock)
			if !ok {
				return errors.New("no armored private key found in the clipboard")
			}
		} else {
			publicArmored, err = prompt.ReadMultiline("Paste the armored PUBLIC key, end with a '.' line:")
			if err != nil {
				return err
			}
			privateArmored, err = prompt.ReadMultiline("Paste the armored PRIVATE key, end with a '.' line:")
			if err != nil {
				return err
			}
		}

		passphrase, err := prompt.ReadPassphrase("Private key passphrase (empty if not protected): ")
		if err != nil {
			return err
		}

		kp, err := m.ImportKeypair(displayName, publicArmored, privateArmored, passphrase, makeDefault)
		if err != nil {
			return err
		}

		color.Green("Imported keypair %s <%s> (%s)", kp.Name, kp.Email, kp.ShortFingerprint())
		return nil
	},
}

var generate = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new passphrase-protected keypair",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		passphrase, err := prompt.ReadNewPassphrase("New passphrase (at least 8 characters): ")
		if err != nil {
			return err
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " generating key material..."
		s.Start()
		kp, err := m.GenerateKeypair(displayName, genName, genEmail, passphrase, makeDefault)
		s.Stop()
		if err != nil {
			return err
		}

		color.Green("Generated keypair %s <%s> (%s)", kp.Name, kp.Email, kp.ShortFingerprint())
		return nil
	},
}

var importGPG = &cobra.Command{
	Use:   "import-gpg",
	Short: "Import a keypair from the system GPG keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		ring := gpgring.New()
		if !ring.IsAvailable() {
			return errors.New("gpg is not installed or not on PATH")
		}

		identities, err := ring.ListSecretKeyIdentities()
		if err != nil {
			return err
		}
		if len(identities) == 0 {
			fmt.Println("The system keyring holds no secret keys.")
			return nil
		}

		items := make([]string, len(identities))
		for i, identity := range identities {
			items[i] = fmt.Sprintf("%s <%s> %s", identity.Name, identity.Email, identity.Fingerprint)
		}
		index, err := prompt.Select("Select a key to import", items)
		if err != nil {
			return err
		}

		passphrase, err := prompt.ReadPassphrase("Private key passphrase (empty if not protected): ")
		if err != nil {
			return err
		}

		m, err := utils.Manager()
		if err != nil {
			return err
		}

		kp, err := m.ImportFromSystemKeyring(ring, identities[index].Fingerprint, displayName, passphrase, makeDefault)
		if err != nil {
			return err
		}

		color.Green("Imported keypair %s <%s> (%s)", kp.Name, kp.Email, kp.ShortFingerprint())
		return nil
	},
}

var setDefault = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Make a keypair the default identity",
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
		if err := m.SetDefaultKeypair(id); err != nil {
			return err
		}

		color.Green("Keypair %d is now the default identity", id)
		return nil
	},
}

var rename = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a keypair",
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
		return m.RenameKeypair(id, args[1])
	},
}

var revoke = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Mark a keypair as revoked",
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
		if err := m.RevokeKeypair(id, revokeReason); err != nil {
			return err
		}

		color.Yellow("Keypair %d marked revoked; it can still decrypt old messages", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a keypair permanently",
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

		confirmed := prompt.Confirm(fmt.Sprintf("Permanently delete keypair %d? This cannot be undone", id))
		deleted, err := m.DeleteKeypair(id, confirmed)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Delete cancelled.")
			return nil
		}

		color.Green("Keypair %d deleted", id)
		return nil
	},
}
