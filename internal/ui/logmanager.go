package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2/widget"
)

// DefaultMaxLogMessages bounds the status bar log.
const DefaultMaxLogMessages = 100

type logEntry struct {
	at      time.Time
	message string
}

// LogUIManager keeps recent messages for the status bar and lets the user
// page through them. It must only be used from the fyne goroutine.
type LogUIManager struct {
	entries        []logEntry
	current        int
	maxLogMessages int
	now            func() time.Time

	label   *widget.Label
	upBtn   *widget.Button
	downBtn *widget.Button
}

// NewLogUIManager wires the manager to the status bar widgets. maxMessages
// <= 0 selects DefaultMaxLogMessages.
func NewLogUIManager(label *widget.Label, upBtn, downBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	lm := &LogUIManager{
		current:        -1,
		maxLogMessages: maxMessages,
		now:            time.Now,
		label:          label,
		upBtn:          upBtn,
		downBtn:        downBtn,
	}
	lm.UpdateLogDisplay()
	return lm
}

// AddLogMessage appends message, dropping the oldest past the limit, and
// shows it.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.entries = append(lm.entries, logEntry{at: lm.now(), message: message})
	if len(lm.entries) > lm.maxLogMessages {
		lm.entries = lm.entries[len(lm.entries)-lm.maxLogMessages:]
	}
	lm.current = len(lm.entries) - 1
	lm.UpdateLogDisplay()
}

// Messages returns the retained messages, oldest first.
func (lm *LogUIManager) Messages() []string {
	out := make([]string, len(lm.entries))
	for i, e := range lm.entries {
		out[i] = e.message
	}
	return out
}

// UpdateLogDisplay shows the selected message and enables the paging buttons
// that have somewhere to go.
func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.label == nil {
		return
	}
	if len(lm.entries) == 0 {
		lm.label.SetText("")
		setEnabled(lm.upBtn, false)
		setEnabled(lm.downBtn, false)
		return
	}
	lm.current = max(0, min(lm.current, len(lm.entries)-1))
	e := lm.entries[lm.current]
	lm.label.SetText(fmt.Sprintf("[%d/%d %s] %s", lm.current+1, len(lm.entries), e.at.Format("15:04:05"), e.message))
	setEnabled(lm.upBtn, lm.current > 0)
	setEnabled(lm.downBtn, lm.current < len(lm.entries)-1)
}

// ShowPreviousLogMessage steps back to an older message.
func (lm *LogUIManager) ShowPreviousLogMessage() {
	if lm.current <= 0 {
		return
	}
	lm.current--
	lm.UpdateLogDisplay()
}

// ShowNextLogMessage steps forward to a newer message.
func (lm *LogUIManager) ShowNextLogMessage() {
	if lm.current >= len(lm.entries)-1 {
		return
	}
	lm.current++
	lm.UpdateLogDisplay()
}

func setEnabled(b *widget.Button, on bool) {
	if b == nil {
		return
	}
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
