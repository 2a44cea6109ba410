package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"tasktracker/internal/client/router"
	"tasktracker/internal/client/session"
	"tasktracker/internal/domains/task/model/dto"
)

const (
	inputCharLimit = 200
	listHeight     = 14
	listWidth      = 60
)

type Identity interface {
	Restore()
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignInWithGoogle(ctx context.Context) error
	SignOut() error
}

type Tasks interface {
	List(ctx context.Context) ([]dto.TaskResponse, error)
	Create(ctx context.Context, title string) (dto.TaskResponse, error)
}

type SessionMsg struct {
	Session session.Session
}

type tasksLoadedMsg struct {
	tasks []dto.TaskResponse
}

type taskCreatedMsg struct {
	task dto.TaskResponse
}

type taskItem struct {
	task dto.TaskResponse
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return "" }
func (i taskItem) FilterValue() string { return i.task.Title }

type itemDelegate struct{}

func (itemDelegate) Height() int                         { return 1 }
func (itemDelegate) Spacing() int                        { return 0 }
func (itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(taskItem)

	box := mutedStyle.Render(boxUnchecked)
	text := it.task.Title

	if it.task.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}

	_, _ = fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// Model is the single-screen client. Operations run against ctx and their failures
// are logged and dropped.
type Model struct {
	ctx      context.Context
	identity Identity
	tasks    Tasks

	session session.Session
	path    string
	view    router.View

	email    textinput.Model
	password textinput.Model
	title    textinput.Model
	list     list.Model
}

func New(ctx context.Context, identity Identity, tasks Tasks, path string) Model {
	if path == "" {
		path = router.PathHome
	}

	email := textinput.New()
	email.Placeholder = "Email"
	email.Prompt = "> "
	email.CharLimit = inputCharLimit

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = "> "
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = inputCharLimit

	title := textinput.New()
	title.Placeholder = "New task title..."
	title.Prompt = "> "
	title.CharLimit = inputCharLimit

	taskList := list.New(nil, itemDelegate{}, listWidth, listHeight)
	taskList.Title = "My Tasks"
	taskList.Styles.Title = titleStyle
	taskList.SetShowHelp(false)
	taskList.SetFilteringEnabled(false)
	taskList.SetShowStatusBar(false)

	m := Model{
		ctx:      ctx,
		identity: identity,
		tasks:    tasks,
		session:  session.Loading(),
		path:     path,
		email:    email,
		password: password,
		title:    title,
		list:     taskList,
	}
	m.view = router.Resolve(m.session, m.path)

	return m
}

func (m Model) CurrentView() router.View {
	return m.view
}

func (m Model) Tasks() []dto.TaskResponse {
	items := m.list.Items()
	res := make([]dto.TaskResponse, 0, len(items))

	for _, item := range items {
		if it, ok := item.(taskItem); ok {
			res = append(res, it.task)
		}
	}

	return res
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.identity.Restore()

		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionMsg:
		m.session = msg.Session

		return m.route()
	case tasksLoadedMsg:
		items := make([]list.Item, len(msg.tasks))
		for i, task := range msg.tasks {
			items[i] = taskItem{task: task}
		}

		cmd := m.list.SetItems(items)

		return m, cmd
	case taskCreatedMsg:
		cmd := m.list.InsertItem(len(m.list.Items()), taskItem{task: msg.task})

		return m, cmd
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height-6, listHeight))

		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.editing() {
		return m.handleEditingKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "h":
		return m.navigate(router.PathHome)
	case "l":
		return m.navigate(router.PathLogin)
	case "r":
		return m.navigate(router.PathRegister)
	case "t":
		return m.navigate(router.PathTasks)
	case "o":
		if m.session.IsAuthenticated() {
			return m, m.signOut()
		}
	case "g":
		if m.view == router.ViewLogin || m.view == router.ViewRegister {
			return m, m.signInWithGoogle()
		}
	case "tab", "enter":
		cmd := m.focusFirst()

		return m, cmd
	default:
		if m.view == router.ViewTasks {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)

			return m, cmd
		}
	}

	return m, nil
}

func (m Model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type { //nolint:exhaustive
	case tea.KeyEsc:
		m.blurAll()

		return m, nil
	case tea.KeyTab:
		cmd := m.focusNext()

		return m, cmd
	case tea.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd

	switch {
	case m.email.Focused():
		m.email, cmd = m.email.Update(msg)
	case m.password.Focused():
		m.password, cmd = m.password.Update(msg)
	case m.title.Focused():
		m.title, cmd = m.title.Update(msg)
	}

	return m, cmd
}

func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	m.path = path

	return m.route()
}

// route re-resolves the view and loads tasks whenever the task list comes into view.
func (m Model) route() (tea.Model, tea.Cmd) {
	previous := m.view
	m.view = router.Resolve(m.session, m.path)

	if m.view == previous {
		return m, nil
	}

	m.blurAll()

	if m.view == router.ViewTasks {
		return m, m.loadTasks()
	}

	return m, nil
}

func (m Model) editing() bool {
	return m.email.Focused() || m.password.Focused() || m.title.Focused()
}

func (m *Model) blurAll() {
	m.email.Blur()
	m.password.Blur()
	m.title.Blur()
}

func (m *Model) focusFirst() tea.Cmd {
	switch m.view { //nolint:exhaustive
	case router.ViewLogin, router.ViewRegister:
		return m.email.Focus()
	case router.ViewTasks:
		return m.title.Focus()
	}

	return nil
}

func (m *Model) focusNext() tea.Cmd {
	if m.view != router.ViewLogin && m.view != router.ViewRegister {
		return nil
	}

	if m.email.Focused() {
		m.email.Blur()

		return m.password.Focus()
	}

	m.password.Blur()

	return m.email.Focus()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.view { //nolint:exhaustive
	case router.ViewLogin:
		email, password := m.email.Value(), m.password.Value()
		m.password.Reset()

		return m, m.run("sign in", func(ctx context.Context) error {
			return m.identity.SignInWithPassword(ctx, email, password)
		})
	case router.ViewRegister:
		email, password := m.email.Value(), m.password.Value()
		m.password.Reset()

		return m, m.run("register", func(ctx context.Context) error {
			return m.identity.SignUp(ctx, email, password)
		})
	case router.ViewTasks:
		title := m.title.Value()
		m.title.Reset()

		return m, m.createTask(title)
	}

	return m, nil
}

func (m Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx

	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("action", action).Msg("request failed")
		}

		return nil
	}
}

func (m Model) signInWithGoogle() tea.Cmd {
	return m.run("google sign in", m.identity.SignInWithGoogle)
}

func (m Model) signOut() tea.Cmd {
	return m.run("sign out", func(context.Context) error {
		return m.identity.SignOut()
	})
}

func (m Model) loadTasks() tea.Cmd {
	ctx, tasks := m.ctx, m.tasks

	return func() tea.Msg {
		res, err := tasks.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to load tasks")

			return nil
		}

		return tasksLoadedMsg{tasks: res}
	}
}

func (m Model) createTask(title string) tea.Cmd {
	ctx, tasks := m.ctx, m.tasks

	return func() tea.Msg {
		task, err := tasks.Create(ctx, title)
		if err != nil {
			log.Error().Err(err).Msg("failed to create task")

			return nil
		}

		return taskCreatedMsg{task: task}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.nav())
	b.WriteString("\n")

	body := strings.Builder{}

	switch m.view {
	case router.ViewLoading:
		body.WriteString("Loading...")
	case router.ViewHome:
		body.WriteString(titleStyle.Render("Welcome to the Task Manager App!"))
		body.WriteString("\n\nPlease log in (l) or register (r) to continue.")
	case router.ViewLogin:
		body.WriteString(m.form("Login", "Sign In"))
	case router.ViewRegister:
		body.WriteString(m.form("Register", "Sign Up"))
	case router.ViewTasks:
		body.WriteString(m.list.View())
		body.WriteString("\n\n")
		body.WriteString(m.title.View())
		body.WriteString("\n")
		body.WriteString(helpStyle.Render("tab: edit title • enter: add • esc: done editing"))
	case router.ViewNotFound:
		body.WriteString("404 - Page Not Found")
	}

	b.WriteString(bodyStyle.Render(body.String()))

	return b.String()
}

func (m Model) nav() string {
	links := []string{"h Home"}

	if m.session.IsAuthenticated() {
		links = append(links, "t My Tasks", "o Sign out")
	} else if m.session.Status == session.StatusUnauthenticated {
		links = append(links, "l Login", "r Register")
	}

	links = append(links, "q Quit")

	return navStyle.Render(strings.Join(links, "  "))
}

func (m Model) form(heading, action string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("tab: next field • enter: %s • g: continue with Google • esc: done editing", action)))

	return b.String()
}
