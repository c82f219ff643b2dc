// ABOUTME: login, logout and me commands for tm-admin
// ABOUTME: A successful login stores the bearer token in the config directory

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the token",
		Long: `Login exchanges email and password for a bearer token and saves it
with mode 0600 next to config.yaml. Missing values are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(c.in)
			if email == "" {
				email = c.prompt(reader, "Email")
			}
			if password == "" {
				password = c.promptSecret(reader, "Password")
			}

			resp, err := c.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := c.saveToken(resp.AccessToken); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s Logged in as %s\n", color.GreenString("✓"), email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in tester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := c.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if c.flagJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(me)
			}

			cyan := color.New(color.FgCyan)
			cyan.Fprintln(c.out, "Tester")
			cyan.Fprintln(c.out, "------")
			fmt.Fprintf(c.out, "ID:      %d\n", me.ID)
			fmt.Fprintf(c.out, "Email:   %s\n", me.Email)
			fmt.Fprintf(c.out, "Name:    %s\n", strings.TrimSpace(me.FirstName+" "+me.LastName))
			fmt.Fprintf(c.out, "Active:  %t\n", me.Active)
			return nil
		},
	}
}

func (c *cli) prompt(reader *bufio.Reader, question string) string {
	fmt.Fprintf(c.out, "%s: ", question)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(c.out)
		return ""
	}
	return strings.TrimSpace(input)
}

// promptSecret reads without echo when stdin is a terminal, and falls back
// to a plain line read otherwise.
func (c *cli) promptSecret(reader *bufio.Reader, question string) string {
	f, ok := c.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return c.prompt(reader, question)
	}
	fmt.Fprintf(c.out, "%s: ", question)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return ""
	}
	return string(secret)
}
