// Package provision implements the out-of-band administrator provisioning
// command. Registration never grants the admin flag; this is the only other
// way besides the startup bootstrap.
package provision

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/falcontrade/internal/flagx"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords do not match")

type adminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password string) (*models.Account, bool, error)
}

// ParseEmail reads -email from args, ignoring the server configuration flags.
func ParseEmail(args []string) (string, error) {
	var email string

	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&email, "email", "", "administrator email")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "--email"})); err != nil {
		return "", err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("-email is required")
	}
	return email, nil
}

// GetPassword reads the password twice from the terminal without echo.
// The returned slice should be wiped by the caller.
func GetPassword(w io.Writer) ([]byte, error) {
	first, err := prompt(w, "Enter password: ")
	if err != nil {
		return nil, err
	}
	second, err := prompt(w, "Repeat password: ")
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)

	if !bytes.Equal(first, second) {
		wipe(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func prompt(w io.Writer, text string) ([]byte, error) {
	if _, err := fmt.Fprint(w, text); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Run makes email an administrator and reports what happened on w. An
// existing account is promoted and keeps its password.
func Run(ctx context.Context, w io.Writer, svc adminEnsurer, email string, password []byte) error {
	account, created, err := svc.EnsureAdmin(ctx, email, string(password))
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "admin account created: %s\n", account.Email)
	} else {
		fmt.Fprintf(w, "account is an administrator: %s\n", account.Email)
	}
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
