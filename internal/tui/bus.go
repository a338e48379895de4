package tui

import (
	"sync"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
)

const busBuffer = 256

// Bus carries messages from installer goroutines into the TUI loop.
// It implements domain.Logger so it can be handed to the core service.
type Bus struct {
	msgs chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBus creates an open bus
func NewBus() *Bus {
	return &Bus{
		msgs: make(chan tea.Msg, busBuffer),
		done: make(chan struct{}),
	}
}

// Log implements domain.Logger
func (b *Bus) Log(msg string, sev domain.Severity) {
	b.Send(views.LogLineMsg{Text: msg, Severity: sev})
}

// Send queues msg for the TUI. It blocks while the buffer is full and
// drops msg once the bus is closed.
func (b *Bus) Send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.msgs <- msg:
	case <-b.done:
	}
}

// Close releases senders and listeners. Safe to call more than once.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}

// listen returns a command that waits for the next message
func (b *Bus) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.done:
			return nil
		}
	}
}
