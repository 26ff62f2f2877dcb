// Package render drives the LED canvases at a fixed frame rate, showing
// network frames while they are fresh and local effects otherwise.
package render

import (
	"github.com/urmzd/lightd/pkg/effect"
)

// Output pushes finished canvases to the LEDs.
type Output interface {
	Show(canvases []*effect.Canvas) error
}

// NullOutput discards frames. It is used when no LED hardware is attached.
type NullOutput struct{}

func (NullOutput) Show([]*effect.Canvas) error { return nil }

// FrameListener is told about every finished frame. It runs on the render
// goroutine and must not block.
type FrameListener interface {
	OnNewFrame(canvases []*effect.Canvas)
}

// Source says where a frame's pixels came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceWire   Source = "wire"
	SourceEffect Source = "effect"
)
