package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kazz187/agentconsole/internal/auth"
	"github.com/kazz187/agentconsole/pkg/color"
)

var errNotLoggedIn = errors.New("not logged in; run `agentctl login` first")

// requireUser settles the identity check for the stored token.
func (cli *CLI) requireUser(ctx context.Context) error {
	cli.c.Auth.LoadUser(ctx)
	if !cli.c.Auth.State().Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (cli *CLI) login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = cli.prompt("Email: "); err != nil {
			return err
		}
	}
	password, err := cli.secret("Password: ")
	if err != nil {
		return err
	}
	cli.c.Auth.Login(ctx, auth.Credentials{Email: email, Password: password})
	return cli.welcome(ctx)
}

func (cli *CLI) register(ctx context.Context, name, email string) error {
	var err error
	if name == "" {
		if name, err = cli.prompt("Name: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = cli.prompt("Email: "); err != nil {
			return err
		}
	}
	if errs, err := cli.c.ValidateDetails(ctx, auth.Profile{Name: name, Email: email}); err != nil {
		return err
	} else if errs != nil {
		return errs
	}
	password, err := cli.secret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := cli.secret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	cli.c.Auth.Register(ctx, auth.Credentials{Name: name, Email: email, Password: password})
	return cli.welcome(ctx)
}

func (cli *CLI) welcome(ctx context.Context) error {
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	st := cli.c.Auth.State()
	if !st.Authenticated() {
		return errNotLoggedIn
	}
	cli.done("Logged in as %s <%s>", color.Heading("%s", st.User.Name), st.User.Email)
	return nil
}

func (cli *CLI) logout(ctx context.Context) error {
	cli.c.Auth.Logout(ctx)
	cli.done("Logged out")
	return nil
}

func (cli *CLI) whoami() error {
	u := cli.c.Auth.State().User
	if cli.format == formatYAML {
		return cli.yaml(u)
	}
	cli.field("Name", u.Name)
	cli.field("Email", u.Email)
	cli.field("ID", u.ID)
	if !u.CreatedAt.IsZero() {
		cli.field("Member since", u.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// profile updates the details; a flag left empty keeps the current value.
func (cli *CLI) profile(ctx context.Context, name, email string) error {
	u := cli.c.Auth.State().User
	p := auth.Profile{Name: u.Name, Email: u.Email}
	if name != "" {
		p.Name = name
	}
	if email != "" {
		p.Email = email
	}
	if errs, err := cli.c.ValidateDetails(ctx, p); err != nil {
		return err
	} else if errs != nil {
		return errs
	}
	cli.c.Auth.UpdateUser(ctx, p)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	cli.done("Profile updated")
	return cli.whoami()
}

func (cli *CLI) password(ctx context.Context) error {
	var (
		p       auth.PasswordChange
		confirm string
		err     error
	)
	if p.CurrentPassword, err = cli.secret("Current password: "); err != nil {
		return err
	}
	if p.NewPassword, err = cli.secret("New password: "); err != nil {
		return err
	}
	if confirm, err = cli.secret("Confirm new password: "); err != nil {
		return err
	}
	errs, err := cli.c.ValidatePasswordChange(ctx, p, confirm)
	if err != nil {
		return err
	}
	if errs != nil {
		return fmt.Errorf("invalid password change: %w", errs)
	}
	cli.c.Auth.UpdatePassword(ctx, p)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	cli.done("Password updated")
	return nil
}
