package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ReadPassphrase reads a passphrase without echo. Empty input is allowed;
// callers decide whether empty means "not protected".
func ReadPassphrase(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot read passphrase: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, label)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "reading passphrase")
	}

	return string(passphrase), nil
}

// ReadNewPassphrase reads a passphrase twice and requires both entries to
// match.
func ReadNewPassphrase(label string) (string, error) {
	first, err := ReadPassphrase(label)
	if err != nil {
		return "", err
	}
	second, err := ReadPassphrase("Confirm: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}

// Confirm asks a yes/no question. A declined prompt is not an error.
func Confirm(label string) bool {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := p.Run()
	return err == nil
}

// Select lets the user pick one of items, returning the chosen index.
func Select(label string, items []string) (int, error) {
	s := promptui.Select{
		Label: label,
		Items: items,
	}
	index, _, err := s.Run()
	if err != nil {
		return -1, errors.Wrap(err, "selection cancelled")
	}
	return index, nil
}

// ReadMultiline reads lines from stdin until EOF or a lone "." line, for
// pasting armored blocks into the terminal. Blank lines are kept, the
// armor format needs them.
func ReadMultiline(label string) (string, error) {
	fmt.Fprintln(os.Stderr, label)

	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	empty := true
	for scanner.Scan() {
		line := scanner.Text()
		if line == "." {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
		empty = false
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "reading input")
	}
	if empty {
		return "", errors.New("no input")
	}

	return b.String(), nil
}
