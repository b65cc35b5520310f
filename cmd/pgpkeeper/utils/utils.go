package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/freetocompute/pgpkeeper/pkg/database"
	"github.com/freetocompute/pgpkeeper/pkg/manager"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/prompt"
	"github.com/freetocompute/pgpkeeper/pkg/session"
)

// Session holds passphrases validated during this run. Cleared by the
// entry point on every exit path, interrupt included.
var Session = session.NewPassphraseCache()

func Manager() (*manager.Manager, error) {
	db, err := database.CreateDatabase()
	if err != nil {
		return nil, err
	}
	return manager.NewManager(db, Session), nil
}

// PromptKeypairPassphrase is the PassphraseFunc used by the interactive
// commands.
func PromptKeypairPassphrase(keypair *models.Keypair) (string, error) {
	label := fmt.Sprintf("Passphrase for %s <%s>: ", keypair.Name, keypair.Email)
	return prompt.ReadPassphrase(label)
}

func ParseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a record id", arg)
	}
	return uint(id), nil
}

func FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
