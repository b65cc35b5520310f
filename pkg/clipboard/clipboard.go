package clipboard

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
)

// Armored block types we autodetect in clipboard text.
const (
	PublicKeyBlock  = "PUBLIC KEY BLOCK"
	PrivateKeyBlock = "PRIVATE KEY BLOCK"
	MessageBlock    = "MESSAGE"
)

func Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errors.Wrap(err, "reading clipboard")
	}
	return text, nil
}

func Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Wrap(err, "writing clipboard")
	}
	return nil
}

// FindArmoredBlock extracts the first armored block of the given type
// from text. Autodetect is a convenience on top of paste import, not a
// correctness requirement.
func FindArmoredBlock(text string, blockType string) (string, bool) {
	begin := "-----BEGIN PGP " + blockType + "-----"
	end := "-----END PGP " + blockType + "-----"

	start := strings.Index(text, begin)
	if start < 0 {
		return "", false
	}
	stop := strings.Index(text[start:], end)
	if stop < 0 {
		return "", false
	}

	return text[start : start+stop+len(end)], true
}

// ReadArmoredBlock reads the clipboard and extracts a block of the given
// type from whatever is there.
func ReadArmoredBlock(blockType string) (string, bool, error) {
	text, err := Read()
	if err != nil {
		return "", false, err
	}
	block, ok := FindArmoredBlock(text, blockType)
	return block, ok, nil
}
