package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	return fmt.Sprintf("%s  %12s  %s", FormatDate(i.tx.Date), FormatSigned(i.tx), describe(i.tx))
}

func (i txItem) Description() string {
	return faintStyle.Render(fmt.Sprintf("[%s] %s", i.tx.CategoryKind, i.tx.CategoryName))
}

func (i txItem) FilterValue() string {
	if i.tx.Description == nil {
		return i.tx.CategoryName
	}

	return *i.tx.Description + " " + i.tx.CategoryName
}

// txFields backs the edit form. It is shared by every copy of the model.
type txFields struct {
	description string
	amount      string
	date        string
}

type TransactionsModel struct {
	session Session
	txs     *transaction.Service
	rules   *rules.Service

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	fields          *txFields
	selected        *transaction.Transaction

	params  report.ReportParams
	loading bool
	status  string
}

func NewTransactionsModel(session Session, txs *transaction.Service, rulesSvc *rules.Service, now func() time.Time) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		session:         session,
		txs:             txs,
		rules:           rulesSvc,
		timeframePicker: NewTimeframePicker(now),
		list:            l,
		fields:          &txFields{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | d: delete | l: learn rule | /: filter"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.params = msg.Params
		m.loading = true
		m.state = txStateList
		m.list.Title = "Transactions: " + msg.Label

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.refreshListItems(msg.txs)

		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case txActionMsg:
		m.state = txStateList
		m.form = nil
		m.loading = false

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			m.state = txStateTimeframe
			m.timeframePicker.Reset()
			m.status = ""

			return m, nil
		case "enter":
			return m.startEditing()
		case "d":
			if item, ok := m.list.SelectedItem().(txItem); ok {
				return m, m.deleteCmd(item.tx)
			}

			return m, nil
		case "l":
			if item, ok := m.list.SelectedItem().(txItem); ok {
				return m, m.learnCmd(item.tx)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.selected = selected.tx
	*m.fields = txFields{
		amount: FormatAmount(selected.tx.Amount),
		date:   FormatDate(selected.tx.Date),
	}

	if selected.tx.Description != nil {
		m.fields.description = *selected.tx.Description
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Description("Leave empty to clear").
				Value(&m.fields.description),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					_, err := decimal.NewFromString(strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.date).
				Validate(func(s string) error {
					_, err := calendar.Parse(strings.TrimSpace(s))
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
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

	m.state = txStateList
	m.loading = true

	return m, m.saveCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.txInfoView() + "\n" + m.form.View())
	}

	return ""
}

func (m TransactionsModel) txInfoView() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Category: %s (%s)  |  Amount: %s",
			m.selected.CategoryName,
			m.selected.CategoryKind,
			FormatSigned(m.selected),
		))
}

func (m *TransactionsModel) refreshListItems(txs []*transaction.Transaction) {
	items := make([]list.Item, len(txs))
	for i, tx := range txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

type txActionMsg struct {
	status string
	err    error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	txs, ownerID := m.txs, m.session.OwnerID
	start, end := m.params.Start, m.params.End

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		found, err := txs.List(ctx, ownerID, transaction.ListFilter{StartDate: &start, EndDate: &end})

		return loadTxsMsg{txs: found, err: err}
	}
}

func (m TransactionsModel) saveCmd() tea.Cmd {
	txs, ownerID, id := m.txs, m.session.OwnerID, m.selected.ID
	fields := *m.fields

	return func() tea.Msg {
		params, err := editParams(fields)
		if err != nil {
			return txActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := txs.Update(ctx, ownerID, id, params); err != nil {
			return txActionMsg{err: err}
		}

		return txActionMsg{status: "Saved."}
	}
}

func (m TransactionsModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	txs, ownerID := m.txs, m.session.OwnerID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := txs.Delete(ctx, ownerID, tx.ID); err != nil {
			return txActionMsg{err: err}
		}

		return txActionMsg{status: "Deleted."}
	}
}

// learnCmd records the transaction's description as a rule for its category.
func (m TransactionsModel) learnCmd(tx *transaction.Transaction) tea.Cmd {
	rulesSvc, ownerID := m.rules, m.session.OwnerID

	return func() tea.Msg {
		if tx.Description == nil {
			return txActionMsg{err: errors.New("transaction has no description to learn from")}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		r, err := rulesSvc.Learn(ctx, ownerID, *tx.Description, tx.CategoryID)
		if err != nil {
			return txActionMsg{err: err}
		}

		return txActionMsg{status: fmt.Sprintf("Learned %q -> %s", r.Pattern, r.CategoryName)}
	}
}

// editParams converts the form values into a full update. An empty
// description clears the stored one.
func editParams(f txFields) (transaction.UpdateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.UpdateParams{}, apperr.Validation("amount", "must be a decimal number")
	}

	date, err := calendar.Parse(strings.TrimSpace(f.date))
	if err != nil {
		return transaction.UpdateParams{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}

	params := transaction.UpdateParams{Amount: &amount, Date: &date}

	if desc := strings.TrimSpace(f.description); desc == "" {
		params.ClearDescription = true
	} else {
		params.Description = &desc
	}

	return params, nil
}

type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n    %s\n", title, i.Description())
}
