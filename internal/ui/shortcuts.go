package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"hdrview/internal/edit"
)

// exposureStep is the exposure change per Up/Down key press, in stops.
const exposureStep = 0.25

type shortcutHelp struct {
	keys, description string
}

var shortcutTable = []shortcutHelp{
	{"Ctrl+O", "Open image"},
	{"Ctrl+S", "Save"},
	{"Ctrl+Z", "Undo"},
	{"Ctrl+Shift+Z", "Redo"},
	{"Ctrl+W", "Close image"},
	{"Ctrl+Q", "Quit"},
	{"F", "Fit image to window"},
	{"C", "Center image"},
	{"+ / -", "Zoom in / out"},
	{"Arrow Right / Left", "Next / previous image"},
	{"Arrow Up / Down", "Exposure +/- 0.25 EV"},
	{"R", "Set or clear the reference image"},
	{"G", "Toggle pixel grid"},
	{"V", "Toggle pixel values"},
	{"S", "Toggle sRGB"},
	{"Shift+scroll", "Pan"},
	{"Esc", "Close dialog"},
}

func (a *App) buildKeyboardShortcuts() {
	c := a.UI.MainWin.Canvas()
	mod := a.UI.mainModKey
	add := func(key fyne.KeyName, m fyne.KeyModifier, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: m}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyO, mod, a.showOpenDialog)
	add(fyne.KeyS, mod, a.save)
	add(fyne.KeyZ, mod, a.undo)
	add(fyne.KeyZ, mod|fyne.KeyModifierShift, a.redo)
	add(fyne.KeyW, mod, a.closeCurrent)
	add(fyne.KeyQ, mod, func() { a.confirmQuit(a.app.Quit) })

	c.SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			if top := c.Overlays().Top(); top != nil {
				top.Hide()
			}
			return
		}
		a.handleKey(key.Name)
	})
}

// handleKey runs the unmodified key bindings. It reports whether name is bound.
func (a *App) handleKey(name fyne.KeyName) bool {
	switch name {
	case fyne.KeyRight:
		a.selectNext(1)
	case fyne.KeyLeft:
		a.selectNext(-1)
	case fyne.KeyUp:
		a.ctrl.SetExposure(a.ctrl.Exposure() + exposureStep)
		a.refresh()
	case fyne.KeyDown:
		a.ctrl.SetExposure(a.ctrl.Exposure() - exposureStep)
		a.refresh()
	case fyne.KeyF:
		a.ctrl.Fit()
		a.refresh()
	case fyne.KeyC:
		a.ctrl.Center()
		a.refresh()
	case fyne.KeyPlus, fyne.KeyEqual:
		a.ctrl.ZoomIn()
		a.refresh()
	case fyne.KeyMinus:
		a.ctrl.ZoomOut()
		a.refresh()
	case fyne.KeyR:
		a.toggleReference()
	case fyne.KeyG:
		a.UI.gridCheck.SetChecked(!a.ctrl.DrawGrid())
	case fyne.KeyV:
		a.UI.valuesCheck.SetChecked(!a.ctrl.DrawValues())
	case fyne.KeyS:
		a.ctrl.SetSRGB(!a.ctrl.SRGB())
	default:
		return false
	}
	return true
}

func (a *App) showOpenDialog() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		a.openFile(path)
	}, a.UI.MainWin)
}

func (a *App) showOpenFolderDialog() {
	dialog.ShowFolderOpen(func(l fyne.ListableURI, err error) {
		if err != nil || l == nil {
			return
		}
		a.openFolder(l.Path())
	}, a.UI.MainWin)
}

// buildMainMenu creates the window menus. The recent files submenu is read
// from the session store when the menu is built.
func (a *App) buildMainMenu() *fyne.MainMenu {
	recent := fyne.NewMenuItem("Open Recent", nil)
	if files, err := a.Service.RecentFiles(a.settings.RecentLimit); err == nil && len(files) > 0 {
		var items []*fyne.MenuItem
		for _, f := range files {
			items = append(items, fyne.NewMenuItem(f.Path, func() { a.openFile(f.Path) }))
		}
		recent.ChildMenu = fyne.NewMenu("", items...)
	} else {
		recent.Disabled = true
	}

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", a.showOpenDialog),
		fyne.NewMenuItem("Open Folder...", a.showOpenFolderDialog),
		recent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", a.save),
		fyne.NewMenuItem("Save As...", a.saveAs),
		fyne.NewMenuItem("Export...", a.export),
		fyne.NewMenuItem("Close", a.closeCurrent),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clean Session Data", a.cleanSessions),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Flip Horizontal", func() { a.applyEdit(edit.FlipHorizontal{}) }),
		fyne.NewMenuItem("Flip Vertical", func() { a.applyEdit(edit.FlipVertical{}) }),
		fyne.NewMenuItem("Gain +1 EV", func() { a.applyEdit(edit.GainStops(1)) }),
		fyne.NewMenuItem("Gain -1 EV", func() { a.applyEdit(edit.GainStops(-1)) }),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Fit", func() { a.handleKey(fyne.KeyF) }),
		fyne.NewMenuItem("Center", func() { a.handleKey(fyne.KeyC) }),
		fyne.NewMenuItem("Zoom In", func() { a.handleKey(fyne.KeyPlus) }),
		fyne.NewMenuItem("Zoom Out", func() { a.handleKey(fyne.KeyMinus) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Next Image", func() { a.selectNext(1) }),
		fyne.NewMenuItem("Previous Image", func() { a.selectNext(-1) }),
		fyne.NewMenuItem("Toggle Reference", a.toggleReference),
	)
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
		fyne.NewMenuItem("About", func() { NewAbout(a.UI.MainWin, "About hdrview").Show() }),
	)
	return fyne.NewMainMenu(file, editMenu, view, help)
}

func (a *App) showShortcuts() {
	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(shortcutTable) + 1, 2 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			label.TextStyle.Bold = isHeader
			switch {
			case isHeader && id.Col == 0:
				label.SetText("Shortcut")
			case isHeader:
				label.SetText("Description")
			case id.Col == 0:
				label.SetText(shortcutTable[id.Row-1].keys)
			default:
				label.SetText(shortcutTable[id.Row-1].description)
			}
		},
	)
	table.SetColumnWidth(0, 180)
	table.SetColumnWidth(1, 300)
	win.SetContent(table)
	win.Resize(fyne.NewSize(500, 500))
	win.Show()
}
