package ui

// The presentation layer is an external collaborator. Components talk to
// it only through these interfaces; rendering, modals and layout live
// entirely on the other side.

// Notifier surfaces one-line notices to the user.
type Notifier interface {
	Notice(text string)
}

// Prompter asks the user a yes/no question without blocking the dispatch
// loop. The answer arrives on the returned channel exactly once.
type Prompter interface {
	Confirm(prompt string) <-chan bool
}

// Surface switches between the client's top-level views.
type Surface interface {
	ShowEntry()
	ShowLobby()
	ShowGame()
}

// StatusSink receives connection status updates.
type StatusSink interface {
	ConnectionStatus(text string)
}

// NopNotifier discards notices; useful in tests.
type NopNotifier struct{}

func (NopNotifier) Notice(string) {}

// NopSurface ignores view switches.
type NopSurface struct{}

func (NopSurface) ShowEntry() {}
func (NopSurface) ShowLobby() {}
func (NopSurface) ShowGame() {}

// StaticPrompter answers every prompt with a fixed value; useful in tests.
type StaticPrompter bool

func (p StaticPrompter) Confirm(string) <-chan bool {
	ch := make(chan bool, 1)
	ch <- bool(p)
	return ch
}
