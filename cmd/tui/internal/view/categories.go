package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocketbook/internal/category"
)

type categoriesState int

const (
	categoriesStateTable categoriesState = iota
	categoriesStateAdding
)

type categoryFields struct {
	name string
	kind category.Kind
}

type CategoriesModel struct {
	session    Session
	categories *category.Service

	state  categoriesState
	table  table.Model
	form   *huh.Form
	fields *categoryFields
	loaded []*category.Category
	status string
}

func NewCategoriesModel(session Session, categories *category.Service) CategoriesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Kind", Width: 8},
			{Title: "Color", Width: 10},
			{Title: "Created", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return CategoriesModel{
		session:    session,
		categories: categories,
		table:      t,
		fields:     &categoryFields{},
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == categoriesStateAdding {
		return "Esc: cancel | Enter: next"
	}

	return "Esc: back | a: add | d: delete | r: refresh"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

type categoriesLoadedMsg struct {
	categories []*category.Category
	err        error
}

type categoryActionMsg struct {
	status string
	err    error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	svc, ownerID := m.categories, m.session.OwnerID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cs, err := svc.List(ctx, ownerID)

		return categoriesLoadedMsg{categories: cs, err: err}
	}
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.loaded = msg.categories
		m.table.SetRows(categoryRows(msg.categories))

		return m, nil

	case categoryActionMsg:
		m.state = categoriesStateTable
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(categoryErrorText(msg.err))
			return m, nil
		}

		m.status = msg.status

		return m, m.loadCmd()
	}

	if m.state == categoriesStateAdding {
		return m.updateAdding(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "a":
			return m.startAdding()
		case "d":
			if i := m.table.Cursor(); i >= 0 && i < len(m.loaded) {
				return m, m.deleteCmd(m.loaded[i])
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CategoriesModel) startAdding() (tea.Model, tea.Cmd) {
	*m.fields = categoryFields{kind: category.KindExpense}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[category.Kind]().
				Key("kind").
				Title("Kind").
				Options(
					huh.NewOption("Expense", category.KindExpense),
					huh.NewOption("Income", category.KindIncome),
				).
				Value(&m.fields.kind),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = categoriesStateAdding

	return m, m.form.Init()
}

func (m CategoriesModel) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = categoriesStateTable
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = categoriesStateTable
	m.form = nil

	svc, ownerID := m.categories, m.session.OwnerID
	params := category.CreateParams{Name: m.fields.name, Kind: m.fields.kind}

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := svc.Create(ctx, ownerID, params)
		if err != nil {
			return categoryActionMsg{err: err}
		}

		return categoryActionMsg{status: fmt.Sprintf("Created %s (%s).", c.Name, c.Kind)}
	}
}

func (m CategoriesModel) deleteCmd(c *category.Category) tea.Cmd {
	svc, ownerID := m.categories, m.session.OwnerID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, ownerID, c.ID); err != nil {
			return categoryActionMsg{err: err}
		}

		return categoryActionMsg{status: fmt.Sprintf("Deleted %s.", c.Name)}
	}
}

func categoryRows(cs []*category.Category) []table.Row {
	rows := make([]table.Row, len(cs))

	for i, c := range cs {
		color := ""
		if c.Color != nil {
			color = *c.Color
		}

		rows[i] = table.Row{c.Name, string(c.Kind), color, FormatDate(c.CreatedAt)}
	}

	return rows
}

func categoryErrorText(err error) string {
	if errors.Is(err, category.ErrInUse) {
		return "Category still has transactions. Move or delete them first."
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m CategoriesModel) View() string {
	if m.state == categoriesStateAdding && m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(headerStyle.Render("New category") + "\n\n" + m.form.View())
	}

	content := m.table.View()
	if m.status != "" {
		content += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
