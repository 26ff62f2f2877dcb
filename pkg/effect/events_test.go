package effect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBrokerDeliversManagerEvents(t *testing.T) {
	m := NewManager(BuiltinRegistry(), testCanvases(), Options{})
	m.LoadDefaultEffects()
	require.NoError(t, m.Init())

	b := NewEventBroker()
	m.AddListener(b)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	require.NoError(t, m.SetCurrentEffectIndex(2))
	m.SetInterval(5 * time.Second)

	evt := <-ch
	assert.Equal(t, EventCurrentChanged, evt.Type)
	assert.Equal(t, 2, evt.Index)
	evt = <-ch
	assert.Equal(t, EventIntervalChanged, evt.Type)
	assert.Equal(t, int64(5000), evt.IntervalMs)
}

func TestEventBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewEventBroker()
	ch := b.Subscribe()
	for i := 0; i < 40; i++ {
		b.OnEffectListDirty()
	}
	assert.Len(t, ch, cap(ch))

	b.Unsubscribe(ch)
	_, open := <-drain(ch)
	assert.False(t, open)
}

func drain(ch chan Event) chan Event {
	for len(ch) > 0 {
		<-ch
	}
	return ch
}
