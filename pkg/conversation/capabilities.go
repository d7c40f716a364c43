package conversation

import "errors"

// ErrShareUnsupported is returned by a Sharer when the host environment has
// no native share handoff; the controller falls back to the clipboard.
var ErrShareUnsupported = errors.New("sharing not supported on this host")

// Clipboard places text on the system clipboard.
type Clipboard interface {
	Write(text string) error
}

// Sharer hands a transcript off to a host share facility.
type Sharer interface {
	Share(title, text string) error
}

// FileSaver persists an export artifact under the given file name.
type FileSaver interface {
	Save(name string, data []byte) error
}

// Capabilities bundles the host collaborators a Controller may call. Any
// field may be nil; the corresponding operation degrades gracefully.
type Capabilities struct {
	Clipboard Clipboard
	Sharer    Sharer
}
