package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/fatih/color"
)

var warn = color.New(color.FgYellow, color.Bold)

// ensureChecked runs the setup check after start-up or a reset.
func (a *App) ensureChecked(ctx context.Context) (services.VaultState, error) {
	if s := a.vault.State(); s != services.StateUninitialized {
		return s, nil
	}
	return a.vault.Check(ctx)
}

// newPassword asks twice and returns both answers; the caller wipes them.
func (a *App) newPassword() ([]byte, []byte, error) {
	pw, err := a.password(a.out, "New password: ")
	if err != nil {
		return nil, nil, err
	}
	confirm, err := a.password(a.out, "Repeat password: ")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, nil, err
	}
	return pw, confirm, nil
}

func (a *App) Setup(ctx context.Context, _ []string) error {
	state, err := a.ensureChecked(ctx)
	if err != nil {
		return err
	}
	if state != services.StateNeedsSetup {
		fmt.Fprintln(a.out, "A vault already exists. Use 'unlock'.")
		return nil
	}

	pw, confirm, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		return services.ErrPasswordMismatch
	}
	if err := a.vault.Setup(ctx, pw); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Vault created and unlocked.")
	warn.Fprintln(a.out, "There is no password recovery. A forgotten password means 'reset' and losing all data.")
	return nil
}

func (a *App) Unlock(ctx context.Context, _ []string) error {
	state, err := a.ensureChecked(ctx)
	if err != nil {
		return err
	}
	switch state {
	case services.StateUnlocked:
		fmt.Fprintln(a.out, "Already unlocked.")
		return nil
	case services.StateNeedsSetup:
		fmt.Fprintln(a.out, "No vault yet. Use 'setup'.")
		return nil
	}

	pw, err := a.password(a.out, "Password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.vault.Unlock(ctx, pw); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unlocked.")
	return nil
}

func (a *App) Lock(_ context.Context, _ []string) error {
	a.vault.Lock()
	fmt.Fprintln(a.out, "Locked.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context, _ []string) error {
	pw, confirm, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	defer common.WipeByteArray(confirm)

	if err := a.vault.ChangePassword(ctx, pw, confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed. All records were re-encrypted.")
	return nil
}

func (a *App) Reset(ctx context.Context, _ []string) error {
	warn.Fprintln(a.out, "Reset erases all jobkeeper data on this machine.")
	warn.Fprintln(a.out, "Export a backup first if you may need the data.")

	first, err := Confirm(a.reader, "Erase all local data?", a.out)
	if err != nil {
		return err
	}
	second := false
	if first {
		ans, err := GetSimpleText(a.reader, "Type RESET to confirm", a.out)
		if err != nil {
			return err
		}
		second = ans == "RESET"
	}

	if err := a.vault.Reset(ctx, first, second); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All local data erased. Use 'setup' to create a new vault.")
	_, err = a.vault.Check(ctx)
	return err
}
