package pgpkeeper

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/freetocompute/pgpkeeper/pkg/clipboard"
	"github.com/freetocompute/pgpkeeper/pkg/editor"
	"github.com/freetocompute/pgpkeeper/pkg/manager"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/prompt"
	"github.com/freetocompute/pgpkeeper/pkg/repositories"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var recipient string
var signMessage bool
var useClipboard bool
var useEditor bool

func init() {
	encrypt.Flags().StringVarP(&recipient, "to", "t", "", "Recipient contact (fingerprint or email); omitted means encrypt to yourself")
	encrypt.Flags().BoolVarP(&signMessage, "sign", "s", false, "Sign with the default keypair")
	encrypt.Flags().BoolVarP(&useClipboard, "clipboard", "c", false, "Read the plaintext from and write the result to the clipboard")
	encrypt.Flags().BoolVarP(&useEditor, "editor", "e", false, "Compose the plaintext in your editor")

	decrypt.Flags().BoolVarP(&useClipboard, "clipboard", "c", false, "Read the message from and write the plaintext to the clipboard")
}

var encrypt = &cobra.Command{
	Use:   "encrypt [message]",
	Short: "Encrypt a message to a contact or to yourself",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		plaintext, err := readPlaintext(args)
		if err != nil {
			return err
		}

		settings, err := m.Settings().Get()
		if err != nil {
			return err
		}
		sign := signMessage || settings.AutoSignMessages

		var armored string
		if recipient == "" {
			if !m.HasDefaultKeypair() {
				return errors.Wrap(manager.ErrNoDefaultKeypair, "cannot encrypt to yourself")
			}
			armored, err = m.EncryptToSelf(plaintext)
		} else {
			var contact *models.Contact
			contact, err = resolveContact(m, recipient)
			if err != nil {
				return err
			}
			armored, err = m.EncryptToContact(contact.Fingerprint, plaintext, sign, utils.PromptKeypairPassphrase)
		}
		if err != nil {
			return err
		}

		if useClipboard {
			if err := clipboard.Write(armored); err != nil {
				return err
			}
			color.Green("Encrypted message copied to the clipboard")
			return nil
		}

		fmt.Println(armored)
		return nil
	},
}

var decrypt = &cobra.Command{
	Use:   "decrypt [message]",
	Short: "Decrypt an armored message with the default keypair",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := utils.Manager()
		if err != nil {
			return err
		}

		var armored string
		if useClipboard {
			block, ok, err := clipboard.ReadArmoredBlock(clipboard.MessageBlock)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no armored PGP message found in the clipboard")
			}
			armored = block
		} else if len(args) > 0 {
			armored = strings.Join(args, " ")
		} else {
			armored, err = prompt.ReadMultiline("Paste the armored message, end with a '.' line:")
			if err != nil {
				return err
			}
		}

		plaintext, err := m.Decrypt(armored, utils.PromptKeypairPassphrase)
		if err != nil {
			if errors.Is(err, manager.ErrNoDefaultKeypair) {
				return errors.New("no default keypair is configured; import or generate one first")
			}
			return err
		}

		if useClipboard {
			if err := clipboard.Write(plaintext); err != nil {
				return err
			}
			color.Green("Decrypted message copied to the clipboard")
			return nil
		}

		fmt.Println(plaintext)
		return nil
	},
}

func readPlaintext(args []string) (string, error) {
	if useEditor {
		return editor.Compose("")
	}
	if useClipboard {
		return clipboard.Read()
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return prompt.ReadMultiline("Enter the message, end with a '.' line:")
}

// resolveContact accepts a fingerprint or an email. Emails are not
// unique across contacts, so an ambiguous match is an error instead of a
// guess.
func resolveContact(m *manager.Manager, ref string) (*models.Contact, error) {
	contact, err := m.Contacts().GetByFingerprint(strings.ToUpper(strings.ReplaceAll(ref, " ", "")))
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return contact, nil
	}

	matches, err := m.Contacts().List(repositories.Where("email", repositories.OpEquals, ref))
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, errors.Errorf("no contact matches %q", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.Errorf("%d contacts share the email %q, use a fingerprint", len(matches), ref)
	}
}
