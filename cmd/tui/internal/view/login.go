package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocketbook/internal/user"
)

// LoggedInMsg carries the session of a successfully authenticated user.
type LoggedInMsg struct {
	Session Session
}

// loginFields is shared by every copy of LoginModel so the form can write into it.
type loginFields struct {
	email    string
	password string
}

type LoginModel struct {
	users *user.Service

	form    *huh.Form
	fields  *loginFields
	loading bool
	err     error
}

func NewLoginModel(users *user.Service) LoginModel {
	m := LoginModel{users: users}
	m.reset()

	return m
}

func (m *LoginModel) reset() {
	m.fields = &loginFields{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.fields.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fields.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign in" }
func (m LoginModel) ShortHelp() string { return "Enter: next | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.loading = false

		if res.err != nil {
			m.err = res.err
			m.reset()

			return m, m.form.Init()
		}

		session := Session{OwnerID: res.user.ID, Name: res.user.Name}

		return m, func() tea.Msg { return LoggedInMsg{Session: session} }
	}

	if m.loading {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.loading = true
	email, password := m.fields.email, m.fields.password
	users := m.users

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := users.Authenticate(ctx, email, password)

		return loginResultMsg{user: u, err: err}
	}
}

func (m LoginModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Signing in...")
	}

	content := headerStyle.Render("Pocketbook") + "\n\n" + m.form.View()
	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}
