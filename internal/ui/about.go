package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Version is reported in the About dialog.
var Version = "dev"

const aboutText = `## hdrview %s

A viewer for high dynamic range images.

Opens Radiance (.hdr, .pic), TIFF, PNG, JPEG and GIF files. Exposure, gamma
and the sRGB curve only change how an image is displayed; edits are kept in
an undo history per image and saved back as Radiance files.`

// About is a small modal dialog describing the application.
type About struct {
	title     string
	parent    fyne.Window
	container *fyne.Container
	d         dialog.Dialog
}

// NewAbout builds the dialog content for parent.
func NewAbout(parent fyne.Window, title string) *About {
	a := &About{
		title:  title,
		parent: parent,
	}

	text := widget.NewRichTextFromMarkdown(aboutMarkdown())
	text.Wrapping = fyne.TextWrapWord

	ok := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("OK", func() { a.Hide() }),
		layout.NewSpacer(),
	)

	a.container = container.NewBorder(nil, ok, nil, nil, container.NewGridWrap(fyne.NewSize(360, 180), text))
	return a
}

func aboutMarkdown() string {
	return fmt.Sprintf(aboutText, Version)
}

// Hide closes the dialog.
func (a *About) Hide() {
	if a.d != nil {
		a.d.Hide()
	}
}

// Show opens the dialog over the parent window.
func (a *About) Show() {
	a.d = dialog.NewCustomWithoutButtons(a.title, a.container, a.parent)
	a.d.Show()
}
