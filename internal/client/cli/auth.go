package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/client/services"
	"github.com/dmitrijs2005/billboard/internal/common"
)

// getSimpleText, getPassword and getList are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getList       = GetList
)

// readSecret reads a password and returns it as a string, wiping the buffer.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for username, email and a confirmed password, checks the
// password policy locally and creates the account.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, services.MsgAlreadySignedIn)
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}

	if msg := services.ValidateSignUpForm(username, email, password, confirm); msg != "" {
		fmt.Fprintln(a.out, msg)
		return nil
	}
	if checks := services.CheckPassword(password); !checks.OK() {
		fmt.Fprintln(a.out, "Password must have:")
		printCheck(a, checks.Length, fmt.Sprintf("at least %d characters", services.MinPasswordLength))
		printCheck(a, checks.Upper, "an uppercase letter")
		printCheck(a, checks.Lower, "a lowercase letter")
		printCheck(a, checks.Number, "a number")
		printCheck(a, checks.Symbol, "a symbol")
		return nil
	}

	res := a.session.SignUp(ctx, username, email, password)
	if !res.OK {
		fmt.Fprintln(a.out, orDefault(res.Error, services.MsgSignUpFailed))
		return nil
	}

	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "Account created. Enter the code sent to %s with 'verify'.\n", orDefault(snap.PendingEmail, "your email"))
	return nil
}

func printCheck(a *App, ok bool, rule string) {
	mark := "x"
	if ok {
		mark = "v"
	}
	fmt.Fprintf(a.out, "  [%s] %s\n", mark, rule)
}

// Verify confirms the pending registration and, when possible, signs in.
func (a *App) Verify(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, services.MsgAlreadySignedIn)
		return nil
	}

	snap := a.session.Snapshot()
	prompt := fmt.Sprintf("Enter the code sent to %s", orDefault(snap.PendingEmail, "your email"))
	code, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	res := a.session.ConfirmSignUp(ctx, code)
	switch {
	case !res.OK:
		fmt.Fprintln(a.out, orDefault(res.Error, services.MsgVerifyFailed))
	case res.SignedIn && res.NeedsOnboarding:
		fmt.Fprintln(a.out, "Email verified. Run 'onboard' to finish setting up your profile.")
	case res.SignedIn:
		fmt.Fprintf(a.out, "Email verified. Signed in as %s.\n", a.username())
	default:
		if res.Error != "" {
			fmt.Fprintln(a.out, res.Error)
		}
		fmt.Fprintln(a.out, "Email verified. Please 'login'.")
	}
	return nil
}

// Resend asks for a new verification code.
func (a *App) Resend(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, services.MsgAlreadySignedIn)
		return nil
	}

	res := a.session.ResendCode(ctx)
	if !res.OK {
		fmt.Fprintln(a.out, res.Error)
		return nil
	}
	fmt.Fprintln(a.out, "A new code is on its way.")
	return nil
}

// Login prompts for credentials and signs in. The password buffer is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	res := a.session.SignIn(ctx, username, password)
	if !res.OK {
		fmt.Fprintln(a.out, orDefault(res.Error, services.MsgSignInFailed))
		return nil
	}
	if res.NeedsOnboarding {
		fmt.Fprintln(a.out, "Signed in. Run 'onboard' to finish setting up your profile.")
		return nil
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", a.username())
	return nil
}

// Onboard collects the optional demographics and the interests and stores
// them in the profile.
func (a *App) Onboard(ctx context.Context) error {
	snap := a.session.Snapshot()
	if snap.PendingUsername == "" {
		if snap.User != nil {
			fmt.Fprintln(a.out, "Your profile is already set up.")
		} else {
			fmt.Fprintln(a.out, "Please 'login' first.")
		}
		return nil
	}

	fmt.Fprintln(a.out, "Tell us a bit about yourself. Every question is optional, press Enter to skip.")
	demographics := make(map[string]string, len(models.DemographicFields))
	for _, f := range models.DemographicFields {
		v, err := getSimpleText(a.reader, f.Label, a.out)
		if err != nil {
			return err
		}
		demographics[f.Key] = v
	}

	interests, err := getList(a.reader, "What are you interested in?", a.out)
	if err != nil {
		return err
	}

	res := a.session.CompleteOnboarding(ctx, demographics, interests)
	if !res.OK {
		fmt.Fprintln(a.out, res.Error)
		if a.session.Snapshot().User == nil {
			return nil
		}
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", a.username())
	return nil
}

func (a *App) Whoami(_ context.Context) error {
	snap := a.session.Snapshot()
	switch {
	case snap.User != nil:
		fmt.Fprintf(a.out, "%s (%s)\n", snap.User.Username, snap.Phase)
	case snap.PendingUsername != "":
		fmt.Fprintf(a.out, "%s <%s> (%s)\n", snap.PendingUsername, snap.PendingEmail, snap.Phase)
	default:
		fmt.Fprintln(a.out, "Not signed in.")
	}
	return nil
}

// Logout ends the session. The saved-bills cache empties with it.
func (a *App) Logout(_ context.Context) error {
	a.session.SignOut()
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// DeleteAccount removes the profile and saved bills on the server after an
// explicit confirmation.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, services.MsgNotSignedIn)
		return nil
	}

	answer, err := getSimpleText(a.reader, "Type DELETE to remove your profile and saved bills", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != "DELETE" {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	res := a.session.DeleteAccount(ctx)
	if !res.OK {
		fmt.Fprintln(a.out, res.Error)
		return nil
	}
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

func (a *App) username() string {
	snap := a.session.Snapshot()
	if snap.User != nil {
		return snap.User.Username
	}
	return snap.PendingUsername
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
