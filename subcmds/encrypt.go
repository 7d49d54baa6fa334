// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fpxbs7777/HM/config"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type EncryptPassword struct{}

func (c *EncryptPassword) Purpose() string {
	return "Encrypts a password for the secrets file"
}

func (c *EncryptPassword) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("encrypt-password", flag.ContinueOnError)
	return "encrypt-password", fset, cli.CmdFunc(c.run)
}

func (c *EncryptPassword) Description() string {
	return `

Command "encrypt-password" reads a password from the terminal and prints it
encrypted with the HMBROKER_MASTER_KEY environment variable. The output can
be used as the login password in the secrets file.

`
}

func (c *EncryptPassword) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	master := os.Getenv("HMBROKER_MASTER_KEY")
	if master == "" {
		return fmt.Errorf("HMBROKER_MASTER_KEY environment variable is not set")
	}
	password, err := cmdutil.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	sealed, err := config.Encrypt(master, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.Stdout(ctx), sealed)
	return nil
}
