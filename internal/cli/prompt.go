package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// interactive reports whether stdin is a terminal.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// promptCredentials asks for whatever of username and password is still empty.
func promptCredentials(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(username))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// promptRegistration fills the empty fields of in.
func promptRegistration(in *domain.Registration) error {
	var fields []huh.Field
	if in.Name == "" {
		fields = append(fields, huh.NewInput().Title("Full name").Value(&in.Name))
	}
	if in.Username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&in.Username))
	}
	if in.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&in.Email))
	}
	if in.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&in.Password))
	}
	if in.Role == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Role").
			Options(
				huh.NewOption("Employee", domain.RoleEmployee),
				huh.NewOption("Manager", domain.RoleManager),
			).
			Value(&in.Role))
	}
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// confirmDeletion asks before an account is removed.
func confirmDeletion(username string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete the account %q?", username)).
		Description("Feedback given or received by this account is removed too.").
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}
