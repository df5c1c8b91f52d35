package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"linkup/auth"
	"linkup/logger"
)

var (
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Sign in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		password := loginPassword
		if password == "" {
			if password, err = promptSecret("Password: "); err != nil {
				return err
			}
		}

		svc := auth.NewService(c.api, c.store, logger.Log)
		u, err := svc.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Signed in as " + u.Username))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		in := auth.RegisterInput{
			FullName:        registerName,
			Email:           registerEmail,
			Password:        registerPassword,
			ConfirmPassword: registerConfirm,
		}
		if in.Password == "" {
			if in.Password, err = promptSecret("Password: "); err != nil {
				return err
			}
		}
		if in.ConfirmPassword == "" {
			if in.ConfirmPassword, err = promptSecret("Confirm password: "); err != nil {
				return err
			}
		}

		svc := auth.NewService(c.api, c.store, logger.Log)
		u, err := svc.Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Welcome, " + u.FullName + "! Your username is " + u.Username))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		if err := auth.NewService(c.api, c.store, logger.Log).Logout(); err != nil {
			return err
		}
		fmt.Println(mutedStyle.Render("Signed out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		u, err := auth.NewService(c.api, c.store, logger.Log).CurrentUser()
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return errors.New("not signed in, run \"linkup login\" first")
		}
		if err != nil {
			return err
		}
		fmt.Println(renderAccount(u))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "password confirmation (prompted when omitted)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}


// promptSecret reads without echo when stdin is a terminal
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprint(os.Stderr, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
