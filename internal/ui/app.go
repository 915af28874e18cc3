// Package ui is the fyne front end of hdrview.
package ui

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"hdrview/internal/config"
	"hdrview/internal/document"
	"hdrview/internal/history"
	"hdrview/internal/scan"
	"hdrview/internal/service"
	"hdrview/internal/session"
	"hdrview/internal/stats"
	"hdrview/internal/viewer"
	"hdrview/internal/workspace"
)

// UI holds the widgets the App updates after state changes.
type UI struct {
	MainWin    fyne.Window
	mainModKey fyne.KeyModifier

	view      *ImageView
	docList   *widget.List
	histogram *HistogramView
	infoText  *widget.RichText

	exposureSlider *widget.Slider
	exposureLabel  *widget.Label
	gammaSlider    *widget.Slider
	gammaLabel     *widget.Label
	srgbCheck      *widget.Check
	ditherCheck    *widget.Check
	gridCheck      *widget.Check
	valuesCheck    *widget.Check
	channelSelect  *widget.Select
	blendSelect    *widget.Select
	histModeSelect *widget.Select

	statusPathLabel  *widget.Label
	statusHoverLabel *widget.Label
	statusZoomLabel  *widget.Label
	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

// App is the viewer application: the open documents, the controller that
// shows them and the widgets around it.
type App struct {
	app fyne.App
	UI  UI

	ws       *workspace.Workspace
	ctrl     *viewer.Controller
	settings config.Settings
	histMode stats.Mode

	Service      *service.Service
	logUIManager *LogUIManager
	thumbnails   *ThumbnailManager
}

// newApp builds the application state over svc. Widgets are created by
// buildMainUI.
func newApp(fa fyne.App, svc *service.Service, settings config.Settings) *App {
	a := &App{
		app:      fa,
		ws:       workspace.New(),
		settings: settings,
		Service:  svc,
	}
	a.ctrl = viewer.New(a.ws)
	settings.Apply(a.ctrl)
	svc.Settings = settings
	svc.Logger = func(message string) {
		fyne.Do(func() { a.addLogMessage(message) })
	}
	a.thumbnails = NewThumbnailManager(svc.Images, a.ctrl.DisplayParams, svc.Logger)
	return a
}

// addLogMessage adds a message to the status bar log.
func (a *App) addLogMessage(message string) {
	if a.logUIManager == nil {
		log.Printf("%s", message)
		return
	}
	a.logUIManager.AddLogMessage(message)
}

// --- Documents ---

// openFile loads path in the background and adds it to the workspace.
func (a *App) openFile(path string) {
	go func() {
		doc, err := a.Service.OpenDocument(path)
		fyne.Do(func() {
			if err != nil {
				a.addLogMessage(fmt.Sprintf("Error opening %s: %v", filepath.Base(path), err))
				return
			}
			a.addDocument(doc)
		})
	}()
}

// openFolder scans dir and opens every image found.
func (a *App) openFolder(dir string) {
	go func() {
		items, err := a.Service.ListImages(dir)
		if err != nil {
			fyne.Do(func() { a.addLogMessage(err.Error()) })
			return
		}
		for _, item := range items {
			doc, err := a.Service.OpenDocument(item.Path)
			fyne.Do(func() {
				if err != nil {
					a.addLogMessage(fmt.Sprintf("Error opening %s: %v", filepath.Base(item.Path), err))
					return
				}
				a.addDocument(doc)
			})
		}
	}()
}

// openPaths opens command line arguments, files and folders alike.
func (a *App) openPaths(paths []string) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			a.addLogMessage(fmt.Sprintf("Cannot open %s: %v", p, err))
			continue
		}
		if info.IsDir() {
			a.openFolder(p)
		} else {
			a.openFile(p)
		}
	}
}

// addDocument makes doc current. A file that is already open is selected
// instead of being added twice.
func (a *App) addDocument(doc *document.Document) {
	if i := a.ws.IndexOf(doc.Filename()); i != workspace.None {
		a.selectDocument(i)
		return
	}
	a.rememberView()
	a.ws.Add(doc)
	a.showCurrent()
}

// selectDocument makes document i current, saving the view of the previous
// one and restoring the saved view of the new one.
func (a *App) selectDocument(i int) {
	if i == a.ws.CurrentIndex() {
		return
	}
	a.rememberView()
	if !a.ws.Select(i) {
		return
	}
	a.showCurrent()
}

func (a *App) selectNext(delta int) {
	if a.ws.Len() < 2 {
		return
	}
	next := ((a.ws.CurrentIndex()+delta)%a.ws.Len() + a.ws.Len()) % a.ws.Len()
	a.selectDocument(next)
}

func (a *App) rememberView() {
	if err := a.Service.RememberView(a.ctrl); err != nil {
		a.addLogMessage(fmt.Sprintf("Saving view state failed: %v", err))
	}
}

// showCurrent restores the saved view of the current document, or fits it.
func (a *App) showCurrent() {
	ok, err := a.Service.RecallView(a.ctrl)
	if err != nil {
		a.addLogMessage(fmt.Sprintf("Loading view state failed: %v", err))
	}
	if !ok {
		a.ctrl.Fit()
	}
	a.syncControls()
	a.refresh()
	if a.UI.docList != nil && a.ws.CurrentIndex() != workspace.None {
		a.UI.docList.Select(a.ws.CurrentIndex())
	}
}

// toggleReference compares against the current document, or clears the
// reference when the current document already is it.
func (a *App) toggleReference() {
	i := a.ws.CurrentIndex()
	if i == workspace.None {
		return
	}
	if a.ws.ReferenceIndex() == i {
		a.ws.SetReference(workspace.None)
		a.addLogMessage("Reference cleared")
	} else {
		a.ws.SetReference(i)
		a.addLogMessage("Reference set to " + a.ws.Current().Name())
	}
	a.refresh()
}

// closeCurrent closes the current document, asking first when it has
// unsaved edits.
func (a *App) closeCurrent() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	closeDoc := func() {
		a.rememberView()
		a.ws.Close(a.ws.CurrentIndex())
		a.thumbnails.Forget(doc.Filename())
		a.UI.docList.UnselectAll()
		a.showCurrent()
	}
	if !doc.IsModified() {
		closeDoc()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		fmt.Sprintf("%s has unsaved changes. Close it anyway?", doc.Name()),
		func(ok bool) {
			if ok {
				closeDoc()
			}
		}, a.UI.MainWin)
}

// --- Edits ---

func (a *App) applyEdit(cmd history.Command) {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	if err := doc.Modify(cmd); err != nil {
		a.addLogMessage(fmt.Sprintf("%s failed: %v", cmd.Name(), err))
		return
	}
	a.addLogMessage(fmt.Sprintf("Applied %s to %s", cmd.Name(), doc.Name()))
	a.refresh()
}

func (a *App) undo() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	name, _ := doc.History().UndoName()
	if doc.Undo() {
		a.addLogMessage("Undid " + name)
		a.refresh()
	}
}

func (a *App) redo() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	name, _ := doc.History().RedoName()
	if doc.Redo() {
		a.addLogMessage("Redid " + name)
		a.refresh()
	}
}

// --- Saving ---

func (a *App) save() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	if !service.IsRadiancePath(doc.Filename()) {
		a.saveAs()
		return
	}
	a.saveTo(doc, "")
}

func (a *App) saveTo(doc *document.Document, path string) {
	if err := a.Service.SaveDocument(doc, path); err != nil {
		dialog.ShowError(err, a.UI.MainWin)
		return
	}
	a.refresh()
}

func (a *App) saveAs() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		a.saveTo(doc, path)
	}, a.UI.MainWin)
	d.SetFileName(strings.TrimSuffix(doc.Name(), filepath.Ext(doc.Name())) + ".hdr")
	d.Show()
}

func (a *App) export() {
	doc := a.ws.Current()
	if doc == nil {
		return
	}
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		if err := a.Service.ExportLDR(doc, path, a.ctrl.DisplayParams(), image.Rectangle{}); err != nil {
			dialog.ShowError(err, a.UI.MainWin)
		}
	}, a.UI.MainWin)
	d.SetFileName(strings.TrimSuffix(doc.Name(), filepath.Ext(doc.Name())) + ".png")
	d.Show()
}

func (a *App) cleanSessions() {
	if _, err := a.Service.CleanSessions(); err != nil {
		a.addLogMessage(fmt.Sprintf("Cleaning session data failed: %v", err))
	}
}

// --- Display ---

// refresh redraws everything that depends on the current document.
func (a *App) refresh() {
	if a.UI.view == nil {
		return
	}
	a.UI.view.Refresh()
	a.UI.docList.Refresh()
	a.updateHistogram()
	a.updateInfoText()
	a.updateStatusBar()
	a.updateTitle()
}

// syncControls copies controller state into the side panel widgets.
func (a *App) syncControls() {
	if a.UI.view == nil {
		return
	}
	a.UI.exposureSlider.SetValue(float64(a.ctrl.Exposure()))
	a.UI.gammaSlider.SetValue(float64(a.ctrl.Gamma()))
	a.UI.srgbCheck.SetChecked(a.ctrl.SRGB())
	a.UI.channelSelect.SetSelected(a.ctrl.Channel().String())
}

func (a *App) updateHistogram() {
	doc := a.ws.Current()
	if doc == nil {
		a.UI.histogram.SetHistogram(nil)
		return
	}
	a.UI.histogram.SetHistogram(doc.Histogram(a.histMode, a.ctrl.Exposure()))
}

func (a *App) updateTitle() {
	title := "hdrview"
	if doc := a.ws.Current(); doc != nil {
		title = doc.Name() + " - hdrview"
		if doc.IsModified() {
			title = "*" + title
		}
	}
	a.UI.MainWin.SetTitle(title)
}

func (a *App) updateStatusBar() {
	status := "No image"
	if doc := a.ws.Current(); doc != nil {
		size := doc.Size()
		status = fmt.Sprintf("%s  |  %dx%d  |  Image %d / %d", doc.Filename(), size.X, size.Y, a.ws.CurrentIndex()+1, a.ws.Len())
		if ref := a.ws.Reference(); ref != nil {
			status += fmt.Sprintf("  |  Reference: %s (%s)", ref.Name(), a.ctrl.BlendMode())
		}
	}
	a.UI.statusPathLabel.SetText(status)
	a.UI.statusZoomLabel.SetText(formatZoom(a.ctrl.Viewport().Zoom()))
}

func (a *App) updateInfoText() {
	doc := a.ws.Current()
	if doc == nil {
		a.UI.infoText.ParseMarkdown("## Info\n---\nNo image loaded.")
		return
	}
	a.UI.infoText.ParseMarkdown(documentMarkdown(doc))
}

// documentMarkdown describes doc for the info panel.
func documentMarkdown(doc *document.Document) string {
	var b strings.Builder
	size := doc.Size()
	fmt.Fprintf(&b, "## %s\n\n", doc.Name())
	fmt.Fprintf(&b, "**Format:** %s\n\n**Size:** %d x %d px\n\n", doc.Format(), size.X, size.Y)

	s := doc.Statistics()
	b.WriteString("---\n## Statistics\n\n")
	for i, name := range stats.ChannelNames {
		fmt.Fprintf(&b, "**%s:** mean %.4f, min %.4f, max %.4f\n\n", name, s.Mean[i], s.Min[i], s.Max[i])
	}

	b.WriteString("---\n## History\n\n")
	h := doc.History()
	if name, ok := h.UndoName(); ok {
		fmt.Fprintf(&b, "**Undo:** %s (%d)\n\n", name, h.UndoLen())
	}
	if name, ok := h.RedoName(); ok {
		fmt.Fprintf(&b, "**Redo:** %s (%d)\n\n", name, h.RedoLen())
	}
	if !h.HasUndo() && !h.HasRedo() {
		b.WriteString("(no edits)\n\n")
	}
	if doc.IsModified() {
		b.WriteString("*Unsaved changes*\n")
	}
	return b.String()
}

func formatZoom(zoom float32) string {
	return fmt.Sprintf("Zoom: %.1f%%", zoom*100)
}

// formatHover is the status bar readout for the pixel under the cursor.
func formatHover(h viewer.Hover) string {
	if !h.Inside {
		return fmt.Sprintf("(%d, %d)", h.Pixel.X, h.Pixel.Y)
	}
	return fmt.Sprintf("(%d, %d)  raw %.3f %.3f %.3f  display %.0f %.0f %.0f",
		h.Pixel.X, h.Pixel.Y,
		h.Raw.R, h.Raw.G, h.Raw.B,
		h.Display.R, h.Display.G, h.Display.B)
}

// documentLabel is the list entry text for document i.
func (a *App) documentLabel(i int) string {
	doc := a.ws.At(i)
	if doc == nil {
		return ""
	}
	label := doc.Name()
	if doc.IsModified() {
		label = "* " + label
	}
	if i == a.ws.ReferenceIndex() {
		label += " [ref]"
	}
	return label
}

// --- Layout ---

func (a *App) buildDocumentList() *widget.List {
	list := widget.NewList(
		func() int { return a.ws.Len() },
		func() fyne.CanvasObject {
			icon := widget.NewIcon(nil)
			return container.NewBorder(nil, nil, container.NewGridWrap(fyne.NewSize(48, 48), icon), nil, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			label := row.Objects[0].(*widget.Label)
			icon := row.Objects[1].(*fyne.Container).Objects[0].(*widget.Icon)
			label.SetText(a.documentLabel(id))
			if doc := a.ws.At(id); doc != nil {
				icon.SetResource(a.thumbnails.GetThumbnail(doc, func(res fyne.Resource) {
					a.UI.docList.RefreshItem(id)
				}))
			}
		},
	)
	list.OnSelected = func(id widget.ListItemID) { a.selectDocument(id) }
	return list
}

func (a *App) buildControls() fyne.CanvasObject {
	u := &a.UI
	u.exposureLabel = widget.NewLabel("")
	u.exposureSlider = widget.NewSlider(-10, 10)
	u.exposureSlider.Step = 0.125
	u.exposureSlider.OnChanged = func(v float64) {
		a.ctrl.SetExposure(float32(v))
		a.refresh()
	}

	u.gammaLabel = widget.NewLabel("")
	u.gammaSlider = widget.NewSlider(0.1, 5)
	u.gammaSlider.Step = 0.05
	u.gammaSlider.OnChanged = func(v float64) {
		a.ctrl.SetGamma(float32(v))
		a.UI.view.Refresh()
	}

	u.srgbCheck = widget.NewCheck("sRGB", func(b bool) {
		a.ctrl.SetSRGB(b)
		// Gamma only applies without the sRGB curve.
		if b {
			a.UI.gammaSlider.Disable()
		} else {
			a.UI.gammaSlider.Enable()
		}
		a.UI.view.Refresh()
	})
	u.ditherCheck = widget.NewCheck("Dither", func(b bool) {
		a.ctrl.SetDither(b)
		a.UI.view.Refresh()
	})
	u.gridCheck = widget.NewCheck("Pixel grid", func(b bool) {
		a.ctrl.SetDrawGrid(b)
		a.UI.view.Refresh()
	})
	u.valuesCheck = widget.NewCheck("Pixel values", func(b bool) {
		a.ctrl.SetDrawValues(b)
		a.UI.view.Refresh()
	})

	var channels []string
	for _, c := range viewer.Channels() {
		channels = append(channels, c.String())
	}
	u.channelSelect = widget.NewSelect(channels, func(s string) {
		if c, ok := viewer.ParseChannel(s); ok {
			a.ctrl.SetChannel(c)
			a.UI.view.Refresh()
		}
	})

	var blends []string
	for _, b := range viewer.BlendModes() {
		blends = append(blends, b.String())
	}
	u.blendSelect = widget.NewSelect(blends, func(s string) {
		if b, ok := viewer.ParseBlendMode(s); ok {
			a.ctrl.SetBlendMode(b)
			a.refresh()
		}
	})

	u.histModeSelect = widget.NewSelect([]string{stats.Linear.String(), stats.DisplayEncoded.String()}, func(s string) {
		if m, ok := stats.ParseMode(s); ok {
			a.histMode = m
			a.updateHistogram()
		}
	})

	u.srgbCheck.SetChecked(a.ctrl.SRGB())
	u.ditherCheck.SetChecked(a.ctrl.Dither())
	u.gridCheck.SetChecked(a.ctrl.DrawGrid())
	u.valuesCheck.SetChecked(a.ctrl.DrawValues())
	u.exposureSlider.SetValue(float64(a.ctrl.Exposure()))
	u.gammaSlider.SetValue(float64(a.ctrl.Gamma()))
	u.channelSelect.SetSelected(a.ctrl.Channel().String())
	u.blendSelect.SetSelected(a.ctrl.BlendMode().String())
	u.histModeSelect.SetSelected(a.histMode.String())
	a.setExposureLabel(a.ctrl.Exposure())
	a.setGammaLabel(a.ctrl.Gamma())

	return container.NewVBox(
		u.exposureLabel, u.exposureSlider,
		u.gammaLabel, u.gammaSlider,
		container.NewGridWithColumns(2, u.srgbCheck, u.ditherCheck, u.gridCheck, u.valuesCheck),
		widget.NewForm(
			widget.NewFormItem("Channel", u.channelSelect),
			widget.NewFormItem("Blend", u.blendSelect),
			widget.NewFormItem("Histogram", u.histModeSelect),
		),
	)
}

func (a *App) setExposureLabel(v float32) {
	a.UI.exposureLabel.SetText(fmt.Sprintf("Exposure: %+.2f EV", v))
}

func (a *App) setGammaLabel(v float32) {
	a.UI.gammaLabel.SetText(fmt.Sprintf("Gamma: %.2f", v))
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	u := &a.UI
	u.statusPathLabel = widget.NewLabel("")
	u.statusPathLabel.Truncation = fyne.TextTruncateEllipsis
	u.statusHoverLabel = widget.NewLabel("")
	u.statusZoomLabel = widget.NewLabel("")
	u.statusLogLabel = widget.NewLabel("")
	u.statusLogLabel.Truncation = fyne.TextTruncateEllipsis
	u.statusLogUpBtn = widget.NewButton("▲", func() { a.logUIManager.ShowPreviousLogMessage() })
	u.statusLogDownBtn = widget.NewButton("▼", func() { a.logUIManager.ShowNextLogMessage() })
	a.logUIManager = NewLogUIManager(u.statusLogLabel, u.statusLogUpBtn, u.statusLogDownBtn, DefaultMaxLogMessages)

	top := container.NewBorder(nil, nil, nil, container.NewHBox(u.statusHoverLabel, u.statusZoomLabel), u.statusPathLabel)
	logRow := container.NewBorder(nil, nil, nil, container.NewHBox(u.statusLogUpBtn, u.statusLogDownBtn), u.statusLogLabel)
	return container.NewVBox(top, logRow)
}

// buildMainUI creates the window content and wires controller callbacks to
// the widgets.
func (a *App) buildMainUI() fyne.CanvasObject {
	u := &a.UI
	u.view = NewImageView(a.ctrl)
	u.view.OnInteraction = a.updateStatusBar
	u.histogram = NewHistogramView()
	u.infoText = widget.NewRichTextFromMarkdown("")
	u.infoText.Wrapping = fyne.TextWrapWord
	u.docList = a.buildDocumentList()

	status := a.buildStatusBar()
	controls := a.buildControls()

	a.ctrl.SetExposureCallback(func(v float32) {
		a.setExposureLabel(v)
		a.UI.exposureSlider.SetValue(float64(v))
	})
	a.ctrl.SetGammaCallback(func(v float32) {
		a.setGammaLabel(v)
		a.UI.gammaSlider.SetValue(float64(v))
	})
	a.ctrl.SetSRGBCallback(func(b bool) { a.UI.srgbCheck.SetChecked(b) })
	a.ctrl.SetHoverCallback(func(h viewer.Hover) { a.UI.statusHoverLabel.SetText(formatHover(h)) })
	a.ctrl.SetZoomCallback(func(z float32) { a.UI.statusZoomLabel.SetText(formatZoom(z)) })

	side := container.NewVSplit(
		container.NewBorder(nil, nil, nil, nil, u.docList),
		container.NewVScroll(container.NewVBox(controls, u.histogram, u.infoText)),
	)
	side.SetOffset(0.3)

	split := container.NewHSplit(u.view, side)
	split.SetOffset(0.75)

	a.refresh()
	return container.NewBorder(nil, status, nil, nil, split)
}

// --- Entry point ---

// Command-line flags
var dbPathFlag = flag.String("dbpath", "", "Directory of the session database (default: user config dir).")
var exposureFlag = flag.Float64("exposure", 0, "Initial exposure in stops.")
var gammaFlag = flag.Float64("gamma", 2.2, "Initial display gamma, used when sRGB is off.")
var historyFlag = flag.Int("history", config.Default().HistoryCapacity, "Undo steps kept per image (0 for unlimited).")

// CreateApplication is the GUI entrypoint. Arguments are image files or
// folders to open.
func CreateApplication() {
	flag.Parse()

	settings := config.Default()
	settings.Exposure = float32(*exposureFlag)
	settings.Gamma = float32(*gammaFlag)
	settings.HistoryCapacity = *historyFlag
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	fa := app.NewWithID("com.github.hdrview")
	fa.Settings().SetTheme(NewViewerTheme(fa.Settings().Theme()))

	var ui *App
	store, err := session.Open(*dbPathFlag, func(message string) {
		if ui != nil {
			fyne.Do(func() { ui.addLogMessage(message) })
			return
		}
		log.Printf("%s", message)
	})
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}

	ui = newApp(fa, service.NewService(store, scan.FileScannerImpl{}, nil), settings)
	ui.UI.MainWin = fa.NewWindow("hdrview")
	ui.UI.mainModKey = fyne.KeyModifierShortcutDefault
	ui.UI.MainWin.SetContent(ui.buildMainUI())
	ui.UI.MainWin.SetMainMenu(ui.buildMainMenu())
	ui.buildKeyboardShortcuts()

	ui.UI.MainWin.SetCloseIntercept(func() {
		ui.confirmQuit(func() {
			ui.rememberView()
			log.Println("Closing session database...")
			if err := store.Close(); err != nil {
				log.Printf("Error closing session database: %v", err)
			}
			ui.UI.MainWin.Close()
		})
	})

	ui.openPaths(flag.Args())

	ui.UI.MainWin.Resize(fyne.NewSize(1280, 800))
	ui.UI.MainWin.CenterOnScreen()
	ui.UI.MainWin.ShowAndRun()
}

// confirmQuit runs quit, asking first when documents have unsaved edits.
func (a *App) confirmQuit(quit func()) {
	n := a.ws.ModifiedCount()
	if n == 0 {
		quit()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		fmt.Sprintf("%d image(s) have unsaved changes. Quit anyway?", n),
		func(ok bool) {
			if ok {
				quit()
			}
		}, a.UI.MainWin)
}
