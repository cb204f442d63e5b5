package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register walks the OTP-verified signup: email, verification code sent to
// that email, username, password. On success the new account is adopted and
// the guest question counter is reset.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.SendRegistrationOTP(ctx, email); err != nil {
		fmt.Println("Could not send verification code:", err)
		return err
	}
	fmt.Println("A verification code was sent to", email)

	otp, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.ctrl.Register(ctx, username, email, string(password), otp)
	if err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Welcome,", id.Username)
	return nil
}

// Login prompts for credentials and authenticates. Messages already in the
// guest conversation stay where they are.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.ctrl.Login(ctx, email, string(password))
	if err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	fmt.Println("Welcome back,", id.Username)
	return nil
}

// Logout ends the authenticated session and returns to an empty guest chat.
func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// Profile prints the cached account details after a best-effort refresh.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	a.gate.Refresh(ctx)
	id := a.ctrl.Identity()
	if id == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("Username:", id.Username)
	fmt.Println("Email:   ", id.Email)
	if id.CreatedAt != "" {
		fmt.Println("Member since:", id.CreatedAt)
	}
	return nil
}

// DeleteAccount walks the OTP-confirmed account deletion, then clears all
// local state exactly like a logout.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := a.api.SendDeleteOTP(ctx); err != nil {
		fmt.Println("Could not send confirmation code:", err)
		return err
	}
	fmt.Println("A confirmation code was sent to your email.")

	otp, err := getSimpleText(a.reader, "Enter confirmation code", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.DeleteAccount(ctx, otp); err != nil {
		fmt.Println("Account deletion failed:", err)
		return err
	}

	if err := a.ctrl.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Account deleted.")
	return nil
}
