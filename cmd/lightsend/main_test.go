package main

import (
	"image/color"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/lightd/pkg/wire"
)

func TestRainbowSpansHueCircle(t *testing.T) {
	px := rainbow(6, 0)
	require.Len(t, px, 6)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, px[0])
	assert.Equal(t, color.RGBA{G: 255, A: 255}, px[2])
	assert.Equal(t, color.RGBA{B: 255, A: 255}, px[4])

	rotated := rainbow(6, 120)
	assert.Equal(t, px[2], rotated[0])
}

func TestSendReadsStatus(t *testing.T) {
	client, device := net.Pipe()
	defer client.Close()
	defer device.Close()

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, wire.HeaderSize+2*3)
		_, _ = device.Read(buf)
		got <- buf
		_, _ = device.Write(wire.Response{Version: 1, BufferPos: 3, BufferSize: 30}.Encode())
	}()

	s := &sender{conn: client, mask: 1, leds: 2}
	require.NoError(t, s.send(time.Now(), rainbow(2, 0)))

	p, err := wire.Decode(<-got)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), p.Header.ChannelMask())
	assert.Equal(t, uint32(3), s.last.BufferPos)
}
