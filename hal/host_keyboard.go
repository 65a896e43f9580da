//go:build !tinygo && cgo

package hal

import "github.com/hajimehoshi/ebiten/v2"

type hostKeyboard struct {
	ch    chan KeyEvent
	runes []rune
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) poll() {
	k.runes = ebiten.AppendInputChars(k.runes[:0])
	for _, r := range k.runes {
		select {
		case k.ch <- KeyEvent{Press: true, Rune: r}:
		default:
		}
	}
}
