package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"autoclick/internal/core/autoclicker"
)

const pickHint = "Click anywhere to pick the click position. Press Esc to cancel."

// pickerSurface drives our windows for the position picker. All calls may
// come from the executor goroutine and are marshalled onto the UI thread.
//
// When the backend reads the pointer itself the overlay is a small hint
// window and the pick arrives through the global press monitor. Otherwise a
// full-screen window tracks the pointer and takes the press directly.
type pickerSurface struct {
	app     fyne.App
	main    fyne.Window
	hub     *localHub
	tracked *trackedPointer
	// cancel runs when the overlay window is closed by the user.
	cancel func()

	overlay fyne.Window
}

func (s *pickerSurface) HideMain() {
	fyne.Do(s.main.Hide)
}

func (s *pickerSurface) ShowMain() {
	fyne.Do(func() {
		s.main.Show()
		s.main.RequestFocus()
	})
}

func (s *pickerSurface) ShowOverlay() {
	fyne.Do(func() {
		if s.overlay == nil {
			s.overlay = s.newOverlay()
		}
		s.overlay.Show()
		s.overlay.RequestFocus()
	})
}

func (s *pickerSurface) HideOverlay() {
	fyne.Do(func() {
		if s.overlay != nil {
			s.overlay.Hide()
		}
	})
}

func (s *pickerSurface) newOverlay() fyne.Window {
	w := s.app.NewWindow("Pick Position")
	w.SetPadded(false)
	s.hub.attach(w.Canvas())
	w.SetCloseIntercept(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})

	hint := canvas.NewText(pickHint, theme.Color(theme.ColorNameForeground))
	hint.TextStyle = fyne.TextStyle{Bold: true}
	hint.Alignment = fyne.TextAlignCenter

	if s.tracked == nil {
		hint.TextSize = 16
		w.SetContent(container.NewPadded(hint))
		w.SetFixedSize(true)
		w.CenterOnScreen()
		return w
	}

	hint.TextSize = 28
	area := newPickArea(
		func(pos fyne.Position) {
			s.tracked.Track(
				autoclicker.Point{X: float64(pos.X), Y: float64(pos.Y)},
				float64(w.Canvas().Size().Height),
			)
		},
		func(button autoclicker.Button) {
			s.hub.press(button)
		},
	)
	w.SetContent(container.NewStack(area, container.NewCenter(hint)))
	w.SetFullScreen(true)
	return w
}

// pickArea covers the overlay, shows a crosshair cursor and reports pointer
// movement and presses in window coordinates.
type pickArea struct {
	widget.BaseWidget

	onMove  func(fyne.Position)
	onPress func(autoclicker.Button)
}

func newPickArea(onMove func(fyne.Position), onPress func(autoclicker.Button)) *pickArea {
	a := &pickArea{onMove: onMove, onPress: onPress}
	a.ExtendBaseWidget(a)
	return a
}

func (a *pickArea) CreateRenderer() fyne.WidgetRenderer {
	shade := canvas.NewRectangle(color.NRGBA{R: 0x0d, G: 0x10, B: 0x14, A: 0xb0})
	return widget.NewSimpleRenderer(shade)
}

func (a *pickArea) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

func (a *pickArea) MouseIn(ev *desktop.MouseEvent) {
	a.onMove(ev.AbsolutePosition)
}

func (a *pickArea) MouseMoved(ev *desktop.MouseEvent) {
	a.onMove(ev.AbsolutePosition)
}

func (a *pickArea) MouseOut() {}

func (a *pickArea) MouseDown(ev *desktop.MouseEvent) {
	a.onMove(ev.AbsolutePosition)
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		a.onPress(autoclicker.ButtonLeft)
	case desktop.MouseButtonSecondary:
		a.onPress(autoclicker.ButtonRight)
	case desktop.MouseButtonTertiary:
		a.onPress(autoclicker.ButtonMiddle)
	}
}

func (a *pickArea) MouseUp(*desktop.MouseEvent) {}
