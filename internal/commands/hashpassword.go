package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klabast/wb-services/awb-kalender/internal/app"
	"github.com/klabast/wb-services/awb-kalender/internal/config"
)

var errInterrupted = errors.New("interrupted")

func (c *cli) hashPasswordCmd() *cobra.Command {
	var overwrite, insecureUnmask bool

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Create the auth file protecting POST /api/refresh",
		Long: `Creates an auth file with an Argon2id-hashed password.

The file location is taken from auth_file (config, AWB_AUTH_FILE or
AUTH_FILE); by default auth.secret next to the binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.ResolveAuthFile(c.v.GetString(config.KeyAuthFile))
			if err != nil {
				return err
			}
			return runHashPassword(cmd, path, overwrite, insecureUnmask)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing auth file without asking")
	cmd.Flags().BoolVar(&insecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	return cmd
}

func runHashPassword(cmd *cobra.Command, path string, overwrite, insecureUnmask bool) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprint(out, "Enter username: ")
	username, err := readLine(in)
	if err != nil {
		return fmt.Errorf("error reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if insecureUnmask {
		fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  WARNING: Password will be visible on screen!")
		fmt.Fprint(out, "Enter password:   ")
		if password, err = readLine(in); err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		fmt.Fprint(out, "Confirm password: ")
		if passwordConfirm, err = readLine(in); err != nil {
			return fmt.Errorf("error reading password confirmation: %w", err)
		}
	} else {
		if password, err = readPasswordWithMask(out, "Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask(out, "Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	return app.CreateAuthFile(path, username, password, overwrite, in, out)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads a password from the terminal, echoing asterisks.
func readPasswordWithMask(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(syscall.Stdin)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Not a terminal or raw mode unsupported: hidden input
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(password), err
	}
	defer term.Restore(fd, oldState)

	var password []byte
	reader := bufio.NewReader(os.Stdin)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Fprint(out, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(out, "\r\n")
			return "", errInterrupted
		default:
			// Printable ASCII only
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password), nil
}
