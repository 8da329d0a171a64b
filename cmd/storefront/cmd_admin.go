package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

// admin:hash reads a password from stdin so it never lands in shell history.
var adminHashCmd = &cobra.Command{
	Use:   "admin:hash",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.ErrOrStderr(), "password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}

		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return errors.New("password must not be empty")
		}

		hash, err := middleware.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
