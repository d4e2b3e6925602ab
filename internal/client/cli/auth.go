package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharmaronit/mindspend-labs/internal/client/session"
	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates the account together
// with its profile. A failure in the profile step is reported with a hint
// to run 'resume'.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "Enter first name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.session.Register(ctx, session.RegistrationInput{
		Email:     email,
		Password:  string(password),
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		fmt.Fprintln(a.out, "If your account was created without a profile, run 'resume'.")
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Resume finishes a registration whose profile step failed earlier.
func (a *App) Resume(ctx context.Context) error {
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.ResumeRegistration(ctx, string(password)); err != nil {
		if errors.Is(err, common.ErrNoPendingRegistration) {
			fmt.Fprintln(a.out, "Nothing to resume.")
		} else {
			fmt.Fprintln(a.out, "Resume failed:", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			fmt.Fprintln(a.out, "Wrong email or password.")
		case errors.Is(err, common.ErrTooManyAttempts):
			fmt.Fprintln(a.out, "Too many attempts, try again later.")
		default:
			fmt.Fprintln(a.out, "Login failed:", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Welcome back!")
	return nil
}

// Logout ends the session. Safe to call when nobody is signed in.
func (a *App) Logout(ctx context.Context) {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
}

// WhoAmI prints the signed-in identity, if any.
func (a *App) WhoAmI(ctx context.Context) {
	user, ok := a.session.Current(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return
	}
	fmt.Fprintf(a.out, "%s (%s)\n", user.Email, user.ID)
}

// ChangePassword verifies the current password and sets a new one.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.session.ChangePassword(ctx, string(current), string(next)); err != nil {
		if errors.Is(err, common.ErrPasswordVerification) {
			fmt.Fprintln(a.out, "Current password is wrong.")
		} else {
			fmt.Fprintln(a.out, "Password change failed:", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

// RequestReset asks the service to mail a password reset link.
func (a *App) RequestReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.session.RequestPasswordReset(ctx, email); err != nil {
		fmt.Fprintln(a.out, "Request failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "If the address exists, a reset link is on its way.")
	return nil
}

// DeleteAccount permanently deletes the account after a confirmation and a
// password check.
func (a *App) DeleteAccount(ctx context.Context) error {
	confirm, err := getSimpleText(a.reader, "Type DELETE to remove your account and all data", a.out)
	if err != nil {
		return err
	}
	if confirm != "DELETE" {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.DeleteAccount(ctx, string(password)); err != nil {
		if errors.Is(err, common.ErrPasswordVerification) {
			fmt.Fprintln(a.out, "Wrong password.")
		} else {
			fmt.Fprintln(a.out, "Deletion failed:", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}
