package editor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/freetocompute/pgpkeeper/config/configkey"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Compose opens the user's editor on a temp file seeded with initial and
// returns the saved contents. The temp file is removed afterwards; the
// plaintext should not outlive the call on disk.
func Compose(initial string) (string, error) {
	command := viper.GetString(configkey.EditorCommand)
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = "vi"
	}

	path := filepath.Join(os.TempDir(), "pgpkeeper-"+uuid.NewString()+".txt")
	if err := os.WriteFile(path, []byte(initial), 0600); err != nil {
		return "", errors.Wrap(err, "creating compose file")
	}
	defer os.Remove(path)

	parts := strings.Fields(command)
	parts = append(parts, path)

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "running editor %q", command)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "reading compose file")
	}

	return string(content), nil
}
