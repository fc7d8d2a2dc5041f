package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pocketbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pocketbook/internal/category/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/config"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/logging"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
	rulesStore "github.com/MrJamesThe3rd/pocketbook/internal/rules/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocketbook/internal/transaction/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/user"
	userStore "github.com/MrJamesThe3rd/pocketbook/internal/user/store"
)

type services struct {
	users        *user.Service
	categories   *category.Service
	transactions *transaction.Service
	rules        *rules.Service
	reports      *report.Service
	exporter     *export.TextExporter
	now          func() time.Time
}

type model struct {
	svc     services
	session *view.Session

	login  view.LoginModel
	active view.View
}

func initialModel(svc services) model {
	return model{svc: svc, login: view.NewLoginModel(svc.users)}
}

func (m model) Init() tea.Cmd {
	return m.login.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.session == nil {
		if loggedIn, ok := msg.(view.LoggedInMsg); ok {
			m.session = &loggedIn.Session
			slog.Info("signed in", "owner_id", loggedIn.Session.OwnerID)

			return m, nil
		}

		login, cmd := m.login.Update(msg)
		m.login = login.(view.LoginModel)

		return m, cmd
	}

	if _, ok := msg.(view.BackMsg); ok {
		m.active = nil
		return m, nil
	}

	if m.active == nil {
		return m.updateMenu(msg)
	}

	next, cmd := m.active.Update(msg)
	m.active = next.(view.View)

	return m, cmd
}

func (m model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	session := *m.session

	switch keyMsg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.active = view.NewDashboardModel(session, m.svc.reports, m.svc.now)
	case "2":
		m.active = view.NewReportModel(session, m.svc.reports, m.svc.exporter, m.svc.now)
	case "3":
		m.active = view.NewTransactionsModel(session, m.svc.transactions, m.svc.rules, m.svc.now)
	case "4":
		m.active = view.NewCategoriesModel(session, m.svc.categories)
	default:
		return m, nil
	}

	return m, m.active.Init()
}

func (m model) View() string {
	if m.session == nil {
		return m.login.View()
	}

	if m.active != nil {
		help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())
		return m.active.View() + "\n" + help
	}

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("Pocketbook, signed in as %s\n\n", m.session.Name) +
			"1. Dashboard\n" +
			"2. Reports\n" +
			"3. Transactions\n" +
			"4. Categories\n\n" +
			"q. Quit",
	)
}

// logOutput returns the TUI log destination. The terminal belongs to the UI,
// so logs only go to a file when POCKETBOOK_TUI_LOG names one.
func logOutput() (io.Writer, func(), error) {
	path := os.Getenv("POCKETBOOK_TUI_LOG")
	if path == "" {
		return io.Discard, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return f, func() { f.Close() }, nil
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out, closeLog, err := logOutput()
	if err != nil {
		return err
	}
	defer closeLog()

	logging.Setup(out, cfg.Log.Level, cfg.Log.Format)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	categoryService := category.NewService(categoryStore.New(db))
	transactionService := transaction.NewService(txStore.New(db), categoryService)

	svc := services{
		users:        user.NewService(userStore.New(db)),
		categories:   categoryService,
		transactions: transactionService,
		rules:        rules.NewService(rulesStore.New(db), categoryService),
		reports:      report.NewService(transactionService),
		exporter:     export.NewTextExporter(),
		now:          func() time.Time { return time.Now().In(loc) },
	}

	if _, err := tea.NewProgram(initialModel(svc), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
