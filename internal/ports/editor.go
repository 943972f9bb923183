package ports

import "os/exec"

// EditorOpener defines the interface for editing document sources
type EditorOpener interface {
	// OpenFile opens a source file in the configured editor
	OpenFile(path string) error

	// Command returns an exec.Cmd for the editor, for use with tea.ExecProcess
	Command(path string) (*exec.Cmd, error)
}
