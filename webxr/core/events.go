package core

import "sync"

// System internal event codes. Applications should use codes beyond 255.
type EventCode int

const (
	// An immersive or inline session was granted and became active.
	/* Context usage:
	 * ev := ctx.Data.(*core.SessionEvent)
	 */
	EVENT_CODE_SESSION_STARTED EventCode = 0x01

	// The active session ended, either on request or host-driven.
	/* Context usage:
	 * ev := ctx.Data.(*core.SessionEvent)
	 */
	EVENT_CODE_SESSION_ENDED EventCode = 0x02

	// The active session lost visibility (host overlay, headset removed).
	EVENT_CODE_SESSION_BLURRED EventCode = 0x03

	// The blurred session regained visibility.
	EVENT_CODE_SESSION_FOCUSED EventCode = 0x04

	// A frame was delivered to the frame callback.
	/* Context usage:
	 * ev := ctx.Data.(*core.FrameEvent)
	 */
	EVENT_CODE_FRAME_DELIVERED EventCode = 0x05

	// An input source connected.
	/* Context usage:
	 * ev := ctx.Data.(*core.SourceEvent)
	 */
	EVENT_CODE_SOURCE_CONNECTED EventCode = 0x06

	// An input source disconnected. Its id may be reused.
	EVENT_CODE_SOURCE_DISCONNECTED EventCode = 0x07

	// An asynchronous error was reported.
	/* Context usage:
	 * ev := ctx.Data.(*core.ErrorEvent)
	 */
	EVENT_CODE_ERROR EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// SessionEvent accompanies session lifecycle codes.
type SessionEvent struct {
	Mode int
}

// FrameEvent accompanies EVENT_CODE_FRAME_DELIVERED.
type FrameEvent struct {
	Time      int64
	ViewCount int
}

// SourceEvent accompanies input source codes.
type SourceEvent struct {
	ID            int
	Handedness    int
	TargetRayMode int
}

// ErrorEvent accompanies EVENT_CODE_ERROR.
type ErrorEvent struct {
	Code int
}

// EventContext is the payload handed to every listener of a fired code.
type EventContext struct {
	Type EventCode
	Data interface{}
}

// Should return true if handled; handled events are not passed
// on to further listeners.
type FnOnEvent func(ctx EventContext, listener interface{}) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

// State structure.
type eventSystemState struct {
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES]eventCodeEntry
}

/**
 * Event system internal state.
 */
var onceEvent sync.Once
var isInitialized bool = false
var eventState *eventSystemState = nil

func EventInitialize() bool {
	if isInitialized {
		return false
	}
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	isInitialized = true
	return true
}

func EventShutdown() error {
	// Free the listener arrays. The objects pointed to should be destroyed on their own.
	if eventState != nil {
		for i := 0; i < MAX_MESSAGE_CODES; i++ {
			eventState.registered[i].events = nil
		}
	}
	isInitialized = false
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return FALSE.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns TRUE if the event is successfully registered; otherwise false.
 */
func EventRegister(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	for _, e := range eventState.registered[code].events {
		if e.listener == listener {
			LogWarn("event listener already registered for code %d", code)
			return false
		}
	}
	// If at this point, no duplicate was found. Proceed with registration.
	event := &registeredEvent{
		listener: listener,
		callback: onEvent,
	}
	eventState.registered[code].events = append(eventState.registered[code].events, event)
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns FALSE.
 * @param code The event code to stop listening for.
 * @param listener The listener instance used at registration. Can be nil.
 * @returns TRUE if the event is successfully unregistered; otherwise false.
 */
func EventUnregister(code EventCode, listener interface{}) bool {
	if !isInitialized {
		return false
	}

	// If nothing is registered for the code, boot out.
	entries := eventState.registered[code].events
	if len(entries) == 0 {
		return false
	}

	for i, e := range entries {
		if e.listener == listener {
			// Found one, remove it.
			eventState.registered[code].events = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * TRUE, the event is considered handled and is not passed on to any more listeners.
 * @param ctx The event context, carrying the code and its payload.
 * @returns TRUE if handled, otherwise FALSE.
 */
func EventFire(ctx EventContext) bool {
	if !isInitialized {
		return false
	}
	// If nothing is registered for the code, boot out.
	if len(eventState.registered[ctx.Type].events) == 0 {
		return false
	}
	for _, e := range eventState.registered[ctx.Type].events {
		if e.callback(ctx, e.listener) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	// Not handled.
	return false
}
