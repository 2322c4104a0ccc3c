package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// Credentials are the values collected by LoginForm.
type Credentials struct {
	Email    string
	Password string
}

func accessible() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

// LoginForm asks for an email and password. email pre-fills the first field.
func LoginForm(email string) (Credentials, error) {
	creds := Credentials{Email: email}

	err := runForm(accessible(),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&creds.Email).
				Validate(util.ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(util.ValidatePassword),
		),
	)
	if err != nil {
		return Credentials{}, err
	}
	creds.Email = strings.TrimSpace(creds.Email)
	return creds, nil
}

// SelectAppsForm shows a multi-select of apps with the current selection
// checked and returns the chosen ids in list order.
func SelectAppsForm(apps []domain.Application, selected []string) ([]string, error) {
	if len(apps) == 0 {
		return nil, fmt.Errorf("no apps available")
	}

	options := buildAppOptions(apps, selected)
	chosen := make([]string, 0, len(selected))
	chosen = append(chosen, selected...)

	err := runForm(accessible(),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Apps").
				Description(fmt.Sprintf("Choose up to %d apps to aggregate", domain.MaxSelectedApps)).
				Options(options...).
				Limit(domain.MaxSelectedApps).
				Height(selectHeight(len(options)+2, 14)).
				Value(&chosen).
				Validate(func(ids []string) error {
					if len(ids) == 0 {
						return errors.New("select at least one app")
					}
					return nil
				}),
		),
	)
	if err != nil {
		return nil, err
	}
	return chosen, nil
}

// buildAppOptions returns one option per app, labelled with its platform.
func buildAppOptions(apps []domain.Application, selected []string) []huh.Option[string] {
	checked := make(map[string]bool, len(selected))
	for _, id := range selected {
		checked[id] = true
	}

	options := make([]huh.Option[string], len(apps))
	for i, a := range apps {
		options[i] = huh.NewOption(appOptionLabel(a), a.ID).Selected(checked[a.ID])
	}
	return options
}

func appOptionLabel(a domain.Application) string {
	label := a.Name
	if label == "" {
		label = a.ID
	}
	if pf := a.Platform(); pf != "" {
		label += " - " + pf
	}
	return label
}

// WithSpinner runs action behind a spinner titled title.
func WithSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	err := spinner.New().
		Title(title).
		Context(ctx).
		Accessible(accessible()).
		Output(os.Stderr).
		ActionWithErr(action).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func selectHeight(optionCount, max int) int {
	if optionCount < max {
		return optionCount
	}
	return max
}
