package ui

import (
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/redmonkez12/go-auth-service/internal/user"
)

// NewUserInput is collected by RunCreateUserForm.
type NewUserInput struct {
	Email       string
	DisplayName *string
	Password    string
	Premium     bool
}

// RunCreateUserForm displays the interactive account creation form.
func RunCreateUserForm() (*NewUserInput, error) {
	var (
		email       string
		displayName string
		password    string
		confirm     string
		premium     bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("alice@example.com").
				Value(&email).
				Validate(func(s string) error {
					if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("a valid email is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Display name").
				Description("Optional, up to 50 characters").
				Value(&displayName).
				Validate(func(s string) error {
					if utf8.RuneCountInString(strings.TrimSpace(s)) > user.MaxDisplayNameLength {
						return fmt.Errorf("display name is too long")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description("8 to 72 bytes").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if len(s) < 8 || len(s) > 72 {
						return fmt.Errorf("password must be 8 to 72 bytes")
					}
					return nil
				}),

			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),

			huh.NewConfirm().
				Title("Premium account?").
				Value(&premium),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return nil, err
	}

	in := &NewUserInput{
		Email:    strings.TrimSpace(email),
		Password: password,
		Premium:  premium,
	}
	if name := strings.TrimSpace(displayName); name != "" {
		in.DisplayName = &name
	}

	return in, nil
}

// PrintSummary prints the account about to be created.
func PrintSummary(w io.Writer, in *NewUserInput) {
	rows := []string{titleStyle.Render("New account"), field("Email", in.Email)}
	if in.DisplayName != nil {
		rows = append(rows, field("Name", *in.DisplayName))
	}
	rows = append(rows, field("Premium", yesNo(in.Premium)))

	fmt.Fprintln(w, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

// PrintUser prints the stored state of an account.
func PrintUser(w io.Writer, u *user.User) {
	rows := []string{
		field("ID", strconv.FormatInt(u.ID, 10)),
		field("Email", u.Email),
	}
	if u.DisplayName != nil {
		rows = append(rows, field("Name", *u.DisplayName))
	}
	rows = append(rows,
		field("Active", yesNo(u.Active)),
		field("Premium", yesNo(u.Premium)),
		subtleStyle.Render("created "+u.CreatedAt.Format("2006-01-02 15:04:05 MST")),
	)

	fmt.Fprintln(w, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}
