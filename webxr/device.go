package webxr

import (
	"github.com/spaghettifunk/immerse/webxr/math"
)

// DeviceCapabilities is the static capability answer a device gives at
// bind time. A missing XR capability is fatal for the facade; a missing
// graphics capability is fatal for this run.
type DeviceCapabilities struct {
	// The host exposes an XR device API at all.
	XR bool
	// The active graphics context can back an immersive layer.
	Graphics bool
}

// Device is the host side of the facade: the Go rendering of the link-time
// glue the C surface leaves extern. Control methods are invoked from the
// facade's logical thread; all outcomes travel back through the bound
// EventSink, which is safe to push into from any goroutine.
type Device interface {
	// Bind hands the device the sink it must push events into. Called once
	// during Init, before any other method.
	Bind(sink EventSink)

	// Capabilities reports the static host capabilities. Called during Init.
	Capabilities() DeviceCapabilities

	// SessionSupported reports whether the device can grant the given mode.
	// Must be cheap; the facade calls it synchronously.
	SessionSupported(mode SessionMode) bool

	// RequestSession asks the device to start a session. The outcome arrives
	// asynchronously as a session-granted or session-rejected event.
	RequestSession(mode SessionMode, requiredFeature, optionalFeature SessionFeature)

	// EndSession asks the device to end the active session, confirmed by a
	// session-ended event. Must be a no-op when no session is active.
	EndSession()
}

// EventSink receives device events. Pushes are marshalled onto the facade's
// logical thread before any callback fires.
type EventSink interface {
	Push(ev Event)
}

// SourcePose carries the tracked spaces of one input source for one frame.
// A space without a pose this frame leaves its Has flag false.
type SourcePose struct {
	Grip         math.RigidTransform
	TargetRay    math.RigidTransform
	HasGrip      bool
	HasTargetRay bool
}

// EyeState is one eye as the device tracks it. The facade composes the
// projection matrix from the field of view and its stored clip planes.
type EyeState struct {
	// Eye pose in the tracking origin's frame.
	Pose math.RigidTransform
	// Vertical field of view in radians.
	FovY float32
	// x, y, width, height on the frame's framebuffer.
	Viewport [4]int
}

// FrameState is everything the device knows about one granted frame.
type FrameState struct {
	// Framebuffer the caller must bind before rendering this frame.
	FramebufferID int
	// Milliseconds since session start. Monotonic non-decreasing.
	Time int64
	// XR device pose relative to the tracking origin.
	HeadPose math.RigidTransform
	// One entry per eye: 1 for mono, 2 for stereo.
	Eyes []EyeState
	// Poses of connected input sources, keyed by source id.
	SourcePoses map[int]SourcePose
}

type eventType int

const (
	eventSessionGranted eventType = iota
	eventSessionRejected
	eventSessionEnded
	eventVisibility
	eventFrame
	eventSourceConnected
	eventSourceDisconnected
	eventSelectStart
	eventSelect
	eventSelectEnd
	eventError
	eventSupportAnswer
)

// Event is one device-side occurrence, union-style. Devices build events
// through the constructors below; the payload fields stay private so a
// malformed event cannot be assembled.
type Event struct {
	typ      eventType
	mode     SessionMode
	code     Error
	blurred  bool
	frame    *FrameState
	source   InputSource
	sourceID int

	// support probe plumbing, facade internal
	supported   bool
	supportedCb SessionSupportedCallback
}

// SessionGrantedEvent reports that a requested session became active.
func SessionGrantedEvent(mode SessionMode) Event {
	return Event{typ: eventSessionGranted, mode: mode}
}

// SessionRejectedEvent reports that a requested session could not start.
func SessionRejectedEvent(mode SessionMode, code Error) Event {
	return Event{typ: eventSessionRejected, mode: mode, code: code}
}

// SessionEndedEvent reports that the active session ended.
func SessionEndedEvent(mode SessionMode) Event {
	return Event{typ: eventSessionEnded, mode: mode}
}

// VisibilityEvent reports a host-driven visibility transition of the
// active session.
func VisibilityEvent(blurred bool) Event {
	return Event{typ: eventVisibility, blurred: blurred}
}

// FrameDeliveredEvent carries one frame to the frame callback.
func FrameDeliveredEvent(frame *FrameState) Event {
	return Event{typ: eventFrame, frame: frame}
}

// SourceConnectedEvent reports a newly tracked input source.
func SourceConnectedEvent(source InputSource) Event {
	return Event{typ: eventSourceConnected, source: source}
}

// SourceDisconnectedEvent reports that the source with the given id is gone.
func SourceDisconnectedEvent(id int) Event {
	return Event{typ: eventSourceDisconnected, sourceID: id}
}

// SelectStartEvent reports the onset of the primary action on a source.
func SelectStartEvent(id int) Event {
	return Event{typ: eventSelectStart, sourceID: id}
}

// SelectEvent reports the commit moment of the primary action on a source.
func SelectEvent(id int) Event {
	return Event{typ: eventSelect, sourceID: id}
}

// SelectEndEvent reports the release of the primary action on a source.
func SelectEndEvent(id int) Event {
	return Event{typ: eventSelectEnd, sourceID: id}
}

// DeviceErrorEvent reports an asynchronous host failure.
func DeviceErrorEvent(code Error) Event {
	return Event{typ: eventError, code: code}
}
