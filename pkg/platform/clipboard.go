package platform

import "github.com/atotto/clipboard"

// SystemClipboard writes through the OS clipboard (xclip/xsel, pbcopy, or
// the Windows clipboard, whatever the host provides).
type SystemClipboard struct{}

func (SystemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}
