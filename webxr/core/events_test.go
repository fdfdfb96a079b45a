package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEvents(t *testing.T) {
	t.Helper()
	EventInitialize()
	t.Cleanup(func() { _ = EventShutdown() })
}

func TestEventRegisterAndFire(t *testing.T) {
	setupEvents(t)

	var got []EventContext
	ok := EventRegister(EVENT_CODE_SESSION_STARTED, nil, func(ctx EventContext, listener interface{}) bool {
		got = append(got, ctx)
		return false
	})
	require.True(t, ok)

	handled := EventFire(EventContext{
		Type: EVENT_CODE_SESSION_STARTED,
		Data: &SessionEvent{Mode: 1},
	})
	assert.False(t, handled)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Data.(*SessionEvent).Mode)

	// Other codes do not reach this listener.
	EventFire(EventContext{Type: EVENT_CODE_SESSION_ENDED})
	assert.Len(t, got, 1)
}

func TestEventHandledStopsPropagation(t *testing.T) {
	setupEvents(t)

	firstListener := &struct{ name string }{"first"}
	secondListener := &struct{ name string }{"second"}
	secondFired := false

	EventRegister(EVENT_CODE_ERROR, firstListener, func(ctx EventContext, listener interface{}) bool {
		return true
	})
	EventRegister(EVENT_CODE_ERROR, secondListener, func(ctx EventContext, listener interface{}) bool {
		secondFired = true
		return false
	})

	handled := EventFire(EventContext{Type: EVENT_CODE_ERROR, Data: &ErrorEvent{Code: -2}})
	assert.True(t, handled)
	assert.False(t, secondFired)
}

func TestEventDuplicateListenerRejected(t *testing.T) {
	setupEvents(t)

	listener := &struct{}{}
	cb := func(ctx EventContext, l interface{}) bool { return false }
	require.True(t, EventRegister(EVENT_CODE_FRAME_DELIVERED, listener, cb))
	assert.False(t, EventRegister(EVENT_CODE_FRAME_DELIVERED, listener, cb))
}

func TestEventUnregister(t *testing.T) {
	setupEvents(t)

	listener := &struct{}{}
	fired := 0
	EventRegister(EVENT_CODE_SOURCE_CONNECTED, listener, func(ctx EventContext, l interface{}) bool {
		fired++
		return false
	})

	EventFire(EventContext{Type: EVENT_CODE_SOURCE_CONNECTED, Data: &SourceEvent{ID: 0}})
	require.True(t, EventUnregister(EVENT_CODE_SOURCE_CONNECTED, listener))
	EventFire(EventContext{Type: EVENT_CODE_SOURCE_CONNECTED, Data: &SourceEvent{ID: 0}})

	assert.Equal(t, 1, fired)
	// A second unregister finds nothing.
	assert.False(t, EventUnregister(EVENT_CODE_SOURCE_CONNECTED, listener))
}

func TestEventFireWithoutListeners(t *testing.T) {
	setupEvents(t)
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_SESSION_BLURRED}))
}

func TestEventSystemRequiresInitialize(t *testing.T) {
	// Not initialized: everything refuses quietly.
	require.NoError(t, EventShutdown())
	assert.False(t, EventRegister(EVENT_CODE_ERROR, nil, func(ctx EventContext, l interface{}) bool { return false }))
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_ERROR}))
	assert.False(t, EventUnregister(EVENT_CODE_ERROR, nil))
}
