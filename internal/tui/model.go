package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/todolist"
	"github.com/idilsaglam/todolist/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ item model.Item }

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Title }

// single-line rows
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+ui.ItemLine(index+1, it.item))
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	removeKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterKey = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter"))
	copyKey   = key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy"))
)

// inbox receives view-model snapshots; Update drains it into the list.
type inbox struct {
	snap  todolist.Snapshot
	fresh bool
}

type Model struct {
	ctx   context.Context
	vm    *todolist.ViewModel
	list  list.Model
	inbox *inbox

	adding bool
	ti     textinput.Model

	status  string
	errText string
	clip    func(string) error
}

// New builds the program model. The list follows vm through a subscription.
func New(ctx context.Context, vm *todolist.ViewModel) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding { return []key.Binding{addKey, toggleKey, removeKey, filterKey, copyKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item title..."
	ti.CharLimit = 200

	box := &inbox{}
	vm.Subscribe(func(s todolist.Snapshot) {
		box.snap = s
		box.fresh = true
	})
	l.SetItems(toListItems(vm.Filtered()))
	return Model{
		ctx:   ctx,
		vm:    vm,
		list:  l,
		inbox: box,
		ti:    ti,
		clip:  clipboard.WriteAll,
	}
}

// Run starts the alt-screen program and blocks until it quits.
func Run(ctx context.Context, vm *todolist.ViewModel) error {
	_, err := tea.NewProgram(New(ctx, vm), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(size.Width-4, size.Height-6)
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		m.errText = ""
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				m.report(m.vm.ToggleCompletion(m.ctx, it), "toggled")
			}
			return m, m.sync()
		case "d":
			if it, ok := m.selected(); ok {
				m.report(m.vm.Remove(m.ctx, it), "removed")
			}
			return m, m.sync()
		case "a":
			m.adding = true
			m.ti.SetValue("")
			return m, m.ti.Focus()
		case "tab":
			m.vm.ApplyFilter(int(todolist.Filter(m.vm.FilterIndex()).Next()))
			return m, m.sync()
		case "1", "2", "3":
			m.vm.ApplyFilter(int(k.String()[0] - '1'))
			return m, m.sync()
		case "y":
			if it, ok := m.selected(); ok {
				if err := m.clip(it.Title); err != nil {
					m.errText = "copy: " + err.Error()
				} else {
					m.status = "copied"
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			it, err := model.NewItem(m.ti.Value(), model.PriorityMedium, "")
			if err != nil {
				m.errText = "add: " + err.Error()
				return m, nil
			}
			m.adding = false
			m.ti.Blur()
			m.report(m.vm.Add(m.ctx, it), "added")
			return m, m.sync()
		case "esc":
			m.adding = false
			m.errText = ""
			m.ti.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	done, pending := m.vm.Stats()
	filter := todolist.Filter(m.vm.FilterIndex()).String()
	parts := []string{
		ui.Header(done, pending, filter),
		ui.Current().Muted.Render(ui.ProgressBar(done, done+pending, 28)),
		"",
		m.list.View(),
	}
	if m.adding {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		parts = append(parts, bar.Render("Add new item\n"+m.ti.View()))
	}
	switch {
	case m.errText != "":
		parts = append(parts, ui.Current().Error.Render(m.errText))
	case m.status != "":
		parts = append(parts, ui.Current().Muted.Render(m.status))
	}
	return ui.Panel([]string{strings.Join(parts, "\n")})
}

// Items is the list content as currently shown.
func (m Model) Items() []model.Item {
	out := make([]model.Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok {
			out = append(out, li.item)
		}
	}
	return out
}

func (m *Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	return li.item, ok
}

func (m *Model) report(err error, done string) {
	if err != nil {
		m.errText = err.Error()
		m.status = ""
		return
	}
	m.errText = ""
	m.status = done
}

// sync copies the latest snapshot into the list, keeping the cursor in range.
func (m *Model) sync() tea.Cmd {
	if !m.inbox.fresh {
		return nil
	}
	m.inbox.fresh = false
	idx := m.list.Index()
	cmd := m.list.SetItems(toListItems(m.inbox.snap.Filtered))
	if n := len(m.inbox.snap.Filtered); idx >= n && n > 0 {
		m.list.Select(n - 1)
	}
	return cmd
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{item: it})
	}
	return out
}
