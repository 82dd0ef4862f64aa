package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the console.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Open key.Binding // List: open the ticket under the cursor.
	Back key.Binding // Detail/form: return to the list.

	New     key.Binding // List: open the create form.
	Refresh key.Binding // Re-fetch the current view on demand.

	Send       key.Binding // Detail: submit the composer.
	History    key.Binding // Detail: toggle the status trail panel.
	Attach     key.Binding // Detail/form: open the file path prompt.
	Unstage    key.Binding // Detail: drop the last staged attachment.
	NextField  key.Binding // Form: advance focus.
	PriorityUp key.Binding // Form: cycle the priority value.
	Submit     key.Binding // Form: submit the draft.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "subir"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "bajar"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "abrir"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "volver"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "nuevo ticket"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "actualizar"),
	),
	Send: key.NewBinding(
		key.WithKeys("enter", "ctrl+s"),
		key.WithHelp("enter", "enviar"),
	),
	History: key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("C-h", "historial"),
	),
	Attach: key.NewBinding(
		key.WithKeys("ctrl+a"),
		key.WithHelp("C-a", "adjuntar"),
	),
	Unstage: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "quitar adjunto"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "siguiente campo"),
	),
	PriorityUp: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("C-p", "prioridad"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "crear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "salir"),
	),
}
