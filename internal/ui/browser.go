package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ui/components"
	"github.com/sadopc/disklens/internal/ui/style"
)

// browserChrome is the number of lines around the row list: header,
// breadcrumb and status bar.
const browserChrome = 3

// BrowserOptions configures how the browser lists a directory.
type BrowserOptions struct {
	Sort           model.SortConfig
	MergeThreshold float64
	// Ignored hides children whose name it matches. nil hides nothing.
	Ignored func(name string) bool
}

// Browser is an interactive view of a finished scan. It lists one
// directory at a time with small entries merged, and can switch to a panel
// listing the recorded scan errors.
type Browser struct {
	result *model.ScanResult
	cached bool
	opts   BrowserOptions

	current  *model.Node
	navStack []*model.Node
	items    []model.MergedItem

	cursor    int
	offset    int
	errOffset int

	showErrors bool
	showHelp   bool
	statusMsg  string

	width  int
	height int
	theme  style.Theme
	keys   KeyMap
}

// NewBrowser creates a browser positioned at the root of result. The tree
// is sorted in place by opts.Sort.
func NewBrowser(result *model.ScanResult, cached bool, opts BrowserOptions) *Browser {
	b := &Browser{
		result:  result,
		cached:  cached,
		opts:    opts,
		current: result.Root,
		theme:   style.DefaultTheme(),
		keys:    DefaultKeyMap(),
	}
	model.SortTree(result.Root, opts.Sort)
	b.refresh()
	return b
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil
	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keys.ForceQuit) {
		return b, tea.Quit
	}

	if b.showHelp {
		if key.Matches(msg, b.keys.Help) || key.Matches(msg, b.keys.Close) {
			b.showHelp = false
		}
		return b, nil
	}

	b.statusMsg = ""
	if b.showErrors {
		switch {
		case key.Matches(msg, b.keys.Errors), key.Matches(msg, b.keys.Close):
			b.showErrors = false
		case key.Matches(msg, b.keys.Up):
			b.errOffset = max(b.errOffset-1, 0)
		case key.Matches(msg, b.keys.Down):
			b.errOffset = min(b.errOffset+1, max(len(b.result.Errors)-1, 0))
		case key.Matches(msg, b.keys.Help):
			b.showHelp = true
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		}
		return b, nil
	}

	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Help):
		b.showHelp = true
	case key.Matches(msg, b.keys.Errors):
		b.showErrors = true
		b.errOffset = 0
	case key.Matches(msg, b.keys.Up):
		b.moveCursor(-1)
	case key.Matches(msg, b.keys.Down):
		b.moveCursor(1)
	case key.Matches(msg, b.keys.PageUp):
		b.moveCursor(-b.listHeight())
	case key.Matches(msg, b.keys.PageDown):
		b.moveCursor(b.listHeight())
	case key.Matches(msg, b.keys.Enter):
		b.enterDir()
	case key.Matches(msg, b.keys.Back):
		b.goBack()
	case key.Matches(msg, b.keys.SortSize):
		b.toggleSort(model.SortBySize)
	case key.Matches(msg, b.keys.SortName):
		b.toggleSort(model.SortByName)
	case key.Matches(msg, b.keys.SortCount):
		b.toggleSort(model.SortByCount)
	case key.Matches(msg, b.keys.SortMtime):
		b.toggleSort(model.SortByMtime)
	}
	return b, nil
}

func (b *Browser) View() string {
	if b.width == 0 {
		return "Loading..."
	}
	if b.showHelp {
		return components.RenderHelp(b.theme, b.width, b.height)
	}

	header := components.RenderHeader(b.theme, b.result, b.cached, b.width)
	crumb := components.RenderBreadcrumb(b.theme, b.result.Root, b.current, b.width)
	var content string
	if b.showErrors {
		content = components.RenderErrorPanel(b.theme, b.result.Errors, b.errOffset, b.width, b.listHeight())
	} else {
		tv := &components.TreeView{
			Theme:  b.theme,
			Items:  b.items,
			Cursor: b.cursor,
			Offset: b.offset,
			Width:  b.width,
			Height: b.listHeight(),
		}
		tv.EnsureVisible()
		b.offset = tv.Offset
		content = tv.Render()
	}

	status := components.RenderStatusBar(b.theme, components.StatusInfo{
		Dir:        b.current,
		ItemCount:  len(b.items),
		Sort:       b.opts.Sort,
		ErrorCount: len(b.result.Errors),
		ShowErrors: b.showErrors,
		Message:    b.statusMsg,
	}, b.width)

	return header + "\n" + crumb + "\n" + content + "\n" + status
}

func (b *Browser) listHeight() int {
	return max(b.height-browserChrome, 1)
}

func (b *Browser) moveCursor(delta int) {
	b.cursor = min(max(b.cursor+delta, 0), max(len(b.items)-1, 0))
}

func (b *Browser) enterDir() {
	if b.cursor >= len(b.items) {
		return
	}
	item := b.items[b.cursor]
	switch {
	case item.Merged:
		b.statusMsg = "Others merges small entries and cannot be entered"
		return
	case item.Node == nil || !item.Node.IsDir():
		return
	}
	b.navStack = append(b.navStack, b.current)
	b.current = item.Node
	b.cursor = 0
	b.offset = 0
	b.refresh()
}

func (b *Browser) goBack() {
	if len(b.navStack) == 0 {
		return
	}
	leaving := b.current
	b.current = b.navStack[len(b.navStack)-1]
	b.navStack = b.navStack[:len(b.navStack)-1]
	b.refresh()

	b.cursor = 0
	for i, item := range b.items {
		if item.Node == leaving {
			b.cursor = i
			break
		}
	}
	b.offset = 0
}

// toggleSort flips the order when field is already active and otherwise
// switches to field, descending except for names.
func (b *Browser) toggleSort(field model.SortField) {
	cfg := b.opts.Sort
	if cfg.Field == field {
		if cfg.Order == model.SortDesc {
			cfg.Order = model.SortAsc
		} else {
			cfg.Order = model.SortDesc
		}
	} else {
		cfg.Field = field
		cfg.Order = model.SortDesc
		if field == model.SortByName {
			cfg.Order = model.SortAsc
		}
	}
	b.opts.Sort = cfg
	model.SortTree(b.result.Root, cfg)

	var selected *model.Node
	if b.cursor < len(b.items) {
		selected = b.items[b.cursor].Node
	}
	b.refresh()
	for i, item := range b.items {
		if selected != nil && item.Node == selected {
			b.cursor = i
			break
		}
	}
}

func (b *Browser) refresh() {
	b.items = VisibleItems(b.current, b.opts.Ignored, b.opts.MergeThreshold)
	b.moveCursor(0)
}

// VisibleItems lists the children of dir in their current order, leaving
// out names ignored matches and folding entries below threshold into an
// Others row. A zero threshold lists every child as is. Percentages are
// relative to the whole of dir.
func VisibleItems(dir *model.Node, ignored func(name string) bool, threshold float64) []model.MergedItem {
	if dir == nil {
		return nil
	}
	view := *dir
	view.Children = make([]*model.Node, 0, len(dir.Children))
	for _, c := range dir.Children {
		if ignored == nil || !ignored(c.Name) {
			view.Children = append(view.Children, c)
		}
	}
	if threshold > 0 {
		return model.MergeSmall(&view, threshold)
	}

	items := make([]model.MergedItem, 0, len(view.Children))
	for _, c := range view.Children {
		items = append(items, model.MergedItem{
			Name:       c.Name,
			Size:       c.Size,
			Percentage: c.Percentage(dir.Size),
			Type:       c.Type,
			Node:       c,
		})
	}
	return items
}
