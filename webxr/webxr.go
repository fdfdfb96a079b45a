package webxr

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/immerse/webxr/containers"
	"github.com/spaghettifunk/immerse/webxr/core"
	"github.com/spaghettifunk/immerse/webxr/math"
)

// The facade is single-threaded and cooperative: every control function and
// every callback runs on the goroutine that calls Init and ProcessEvents.
// Devices may push events from any goroutine; the ring queue marshals them
// onto that logical thread before dispatch.

type sessionState int

const (
	stateUninitialized sessionState = iota
	stateIdle
	stateRequested
	stateActive
	stateBlurred
)

const (
	// Pending device events between two pumps. A session producing more than
	// this in one pump interval is misbehaving and gets events dropped.
	eventQueueSize = 512

	defaultNearClip float32 = 0.1
	defaultFarClip  float32 = 1000.0

	// Clip distances are clamped to sane minima rather than diagnosed,
	// matching the host's own tolerance.
	minClipDistance float32 = 0.01
	maxClipDistance float32 = 1e9
)

type facadeState struct {
	device Device

	queue *containers.RingQueue

	state     sessionState
	mode      SessionMode
	sessionID uuid.UUID

	near float32
	far  float32

	// Init-time quartet; userData is shared across the four.
	userData       interface{}
	frameCb        FrameCallback
	sessionStartCb SessionCallback
	sessionEndCb   SessionCallback
	errorCb        ErrorCallback

	// Optional callbacks, each with its own user value.
	blurCb              SessionCallback
	blurUserData        interface{}
	focusCb             SessionCallback
	focusUserData       interface{}
	selectCb            InputCallback
	selectUserData      interface{}
	selectStartCb       InputCallback
	selectStartUserData interface{}
	selectEndCb         InputCallback
	selectEndUserData   interface{}

	// Connected sources, in device order. Stable within a session only.
	sources []InputSource

	// Poses of the frame currently being dispatched. Valid only while
	// inFrame is set.
	framePoses map[int]SourcePose
	inFrame    bool

	frameClock       *core.Clock
	lastFrameElapsed float64
	lastFrameTime    int64
}

var isInitialized bool = false
var facade *facadeState = nil

// queueMutex guards the facade pointer and its event queue against device
// goroutines. It outlives the facade itself: devices may still be pushing
// while Shutdown tears the state down, so the lock cannot live inside it.
var queueMutex sync.Mutex

// facadeSink is the EventSink handed to the bound device.
type facadeSink struct{}

func (facadeSink) Push(ev Event) {
	queueMutex.Lock()
	defer queueMutex.Unlock()
	if facade == nil {
		return
	}
	if err := facade.queue.Enqueue(ev); err != nil {
		core.LogWarn("%v", core.ErrQueueFull)
	}
}

/**
Init binds the facade to the host device and registers the mandatory
callback quartet plus an opaque user value passed back to every one of them.
Must be called exactly once before any other operation.

Failure is surfaced through errorCb, never a return value: ERR_API_UNSUPPORTED
when the host exposes no XR API, ERR_GL_INCAPABLE when the graphics context
cannot back an immersive layer. After a failed Init the facade stays
uninitialized and every other operation is a silent no-op.
*/
func Init(device Device, frameCb FrameCallback, sessionStartCb SessionCallback, sessionEndCb SessionCallback, errorCb ErrorCallback, userData interface{}) {
	if isInitialized {
		core.LogWarn("webxr.Init called twice, ignoring")
		return
	}
	if frameCb == nil || errorCb == nil {
		core.LogError("webxr.Init requires a frame callback and an error callback")
		return
	}

	if device == nil || !device.Capabilities().XR {
		errorCb(userData, ERR_API_UNSUPPORTED)
		return
	}
	if !device.Capabilities().Graphics {
		errorCb(userData, ERR_GL_INCAPABLE)
		return
	}

	core.EventInitialize()
	core.MetricsInitialize()

	queueMutex.Lock()
	facade = &facadeState{
		device:         device,
		queue:          containers.NewRingQueue(eventQueueSize),
		state:          stateIdle,
		near:           defaultNearClip,
		far:            defaultFarClip,
		userData:       userData,
		frameCb:        frameCb,
		sessionStartCb: sessionStartCb,
		sessionEndCb:   sessionEndCb,
		errorCb:        errorCb,
		frameClock:     core.NewClock(),
	}
	queueMutex.Unlock()
	isInitialized = true

	device.Bind(facadeSink{})
	core.LogInfo("facade initialized, device bound")
}

// Shutdown releases the facade. An active session is ended through the
// device first; its end callback will not fire. Devices still pushing from
// their own goroutines see their events land nowhere.
func Shutdown() {
	if !isInitialized {
		return
	}
	// EndSession pushes synchronously, so it must run before the lock is
	// taken.
	if facade.state == stateActive || facade.state == stateBlurred {
		facade.device.EndSession()
	}
	core.EventShutdown()
	queueMutex.Lock()
	facade = nil
	queueMutex.Unlock()
	isInitialized = false
}

// SetSessionBlurCallback registers the handler invoked when the host hides
// the active session. A second registration replaces the first.
func SetSessionBlurCallback(cb SessionCallback, userData interface{}) {
	if !isInitialized {
		return
	}
	facade.blurCb = cb
	facade.blurUserData = userData
}

// SetSessionFocusCallback registers the handler invoked when a blurred
// session becomes visible again. A second registration replaces the first.
func SetSessionFocusCallback(cb SessionCallback, userData interface{}) {
	if !isInitialized {
		return
	}
	facade.focusCb = cb
	facade.focusUserData = userData
}

/**
IsSessionSupported probes whether the host supports the given mode. The
answer is delivered through supportedCb exactly once, on the same logical
thread as frame callbacks. There is no error path: unsupported environments
answer false.
*/
func IsSessionSupported(mode SessionMode, supportedCb SessionSupportedCallback) {
	if !isInitialized || supportedCb == nil {
		return
	}
	supported := facade.device.SessionSupported(mode)
	facadeSink{}.Push(Event{
		typ:         eventSupportAnswer,
		mode:        mode,
		supported:   supported,
		supportedCb: supportedCb,
	})
}

/**
RequestSession requests entry into a session of the given mode with one
required and one optional feature. The host expects this call from a
user-activation event. The outcome arrives asynchronously: the session
start callback on success, ERR_SESSION_UNSUPPORTED through errorCb when an
immersive mode is unavailable. While a session is active or pending a second
request is rejected with ERR_SESSION_ACTIVE.
*/
func RequestSession(mode SessionMode, requiredFeature SessionFeature, optionalFeature SessionFeature) {
	if !isInitialized {
		return
	}
	if facade.state != stateIdle {
		facadeSink{}.Push(DeviceErrorEvent(ERR_SESSION_ACTIVE))
		return
	}
	facade.state = stateRequested
	core.LogDebug("requesting %s session (required=%s optional=%s)", mode, requiredFeature, optionalFeature)
	facade.device.RequestSession(mode, requiredFeature, optionalFeature)
}

// RequestExit asks the facade to end the active session. The transition is
// asynchronous: the session end callback fires when the device confirms.
// Idempotent; a no-op when no session is active.
func RequestExit() {
	if !isInitialized {
		return
	}
	if facade.state != stateActive && facade.state != stateBlurred {
		return
	}
	facade.device.EndSession()
}

// SetProjectionParams updates the near and far clip distances used when
// composing per-view projection matrices, taking effect from the next frame.
// Out-of-range values are clamped to sane minima.
func SetProjectionParams(near, far float32) {
	if !isInitialized {
		return
	}
	near = math.Clamp(near, minClipDistance, maxClipDistance)
	far = math.Clamp(far, near+minClipDistance, maxClipDistance)
	facade.near = near
	facade.far = far
}

// SessionID returns the identity of the active session, or uuid.Nil when no
// session is active. Each granted session gets a fresh identity.
func SessionID() uuid.UUID {
	if !isInitialized {
		return uuid.Nil
	}
	if facade.state != stateActive && facade.state != stateBlurred {
		return uuid.Nil
	}
	return facade.sessionID
}

/**
ProcessEvents drains pending device events and fires the registered
callbacks on the calling goroutine. The application must pump it from the
same goroutine it issues control calls on; that goroutine is the facade's
single logical thread.
*/
func ProcessEvents() {
	if !isInitialized {
		return
	}
	for {
		queueMutex.Lock()
		value, err := facade.queue.Dequeue()
		queueMutex.Unlock()
		if err != nil {
			return
		}
		dispatch(value.(Event))
	}
}

func dispatch(ev Event) {
	switch ev.typ {
	case eventSupportAnswer:
		ev.supportedCb(ev.mode, ev.supported)

	case eventSessionGranted:
		if facade.state != stateRequested {
			core.LogWarn("session granted in unexpected state, ignoring")
			return
		}
		facade.state = stateActive
		facade.mode = ev.mode
		facade.sessionID = uuid.New()
		facade.frameClock.Start()
		facade.lastFrameElapsed = 0
		facade.lastFrameTime = 0
		core.MetricsInitialize()
		core.LogInfo("session %s started (%s)", facade.sessionID, ev.mode)
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_SESSION_STARTED,
			Data: &core.SessionEvent{Mode: int(ev.mode)},
		})
		if facade.sessionStartCb != nil {
			facade.sessionStartCb(facade.userData, ev.mode)
		}

	case eventSessionRejected:
		if facade.state == stateRequested {
			facade.state = stateIdle
		}
		dispatchError(ev.code)

	case eventSessionEnded:
		if facade.state != stateActive && facade.state != stateBlurred {
			return
		}
		mode := facade.mode
		facade.frameClock.Update()
		core.LogInfo("session %s ended after %dms (fps avg %.1f)",
			facade.sessionID, facade.frameClock.ElapsedMS(), core.MetricsFPS())
		facade.state = stateIdle
		facade.sessionID = uuid.Nil
		facade.sources = nil
		facade.framePoses = nil
		facade.frameClock.Stop()
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_SESSION_ENDED,
			Data: &core.SessionEvent{Mode: int(mode)},
		})
		if facade.sessionEndCb != nil {
			facade.sessionEndCb(facade.userData, mode)
		}

	case eventVisibility:
		dispatchVisibility(ev.blurred)

	case eventFrame:
		dispatchFrame(ev.frame)

	case eventSourceConnected:
		connectSource(ev.source)

	case eventSourceDisconnected:
		disconnectSource(ev.sourceID)

	case eventSelectStart:
		dispatchSelect(ev.sourceID, facade.selectStartCb, facade.selectStartUserData)

	case eventSelect:
		dispatchSelect(ev.sourceID, facade.selectCb, facade.selectUserData)

	case eventSelectEnd:
		dispatchSelect(ev.sourceID, facade.selectEndCb, facade.selectEndUserData)

	case eventError:
		dispatchError(ev.code)
	}
}

func dispatchVisibility(blurred bool) {
	if blurred && facade.state == stateActive {
		facade.state = stateBlurred
		core.LogDebug("session %s blurred", facade.sessionID)
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_SESSION_BLURRED})
		if facade.blurCb != nil {
			facade.blurCb(facade.blurUserData, facade.mode)
		}
		return
	}
	if !blurred && facade.state == stateBlurred {
		facade.state = stateActive
		core.LogDebug("session %s focused", facade.sessionID)
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_SESSION_FOCUSED})
		if facade.focusCb != nil {
			facade.focusCb(facade.focusUserData, facade.mode)
		}
	}
}

func dispatchFrame(frame *FrameState) {
	// Frames race session teardown in the queue; drop any that arrive for a
	// session that is no longer active and visible.
	if facade.state != stateActive || frame == nil || len(frame.Eyes) == 0 {
		return
	}

	viewCount := len(frame.Eyes)
	if viewCount > 2 {
		core.LogWarn("device delivered %d eyes, truncating to stereo", viewCount)
		viewCount = 2
	}
	if frame.Time < facade.lastFrameTime {
		core.LogWarn("frame timestamp went backwards (%d < %d)", frame.Time, facade.lastFrameTime)
	}
	facade.lastFrameTime = frame.Time

	var views [2]View
	for i := 0; i < viewCount; i++ {
		eye := frame.Eyes[i]
		aspect := float32(1.0)
		if eye.Viewport[2] > 0 && eye.Viewport[3] > 0 {
			aspect = float32(eye.Viewport[2]) / float32(eye.Viewport[3])
		}
		views[i] = View{
			Pose:             eye.Pose,
			ProjectionMatrix: math.NewMat4Perspective(eye.FovY, aspect, facade.near, facade.far),
			Viewport:         eye.Viewport,
		}
	}

	facade.frameClock.Update()
	elapsed := facade.frameClock.Elapsed() / float64(time.Second)
	if facade.lastFrameElapsed > 0 {
		core.MetricsUpdate(elapsed - facade.lastFrameElapsed)
	}
	facade.lastFrameElapsed = elapsed

	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_FRAME_DELIVERED,
		Data: &core.FrameEvent{Time: frame.Time, ViewCount: viewCount},
	})

	// Input pose queries are legal only while the frame callback is on
	// the stack.
	facade.framePoses = frame.SourcePoses
	facade.inFrame = true
	headPose := frame.HeadPose
	facade.frameCb(facade.userData, frame.FramebufferID, frame.Time, &headPose, &views, viewCount)
	facade.inFrame = false
	facade.framePoses = nil
}

func dispatchError(code Error) {
	core.LogError("xr error: %s (%d)", code, int(code))
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_ERROR,
		Data: &core.ErrorEvent{Code: int(code)},
	})
	if facade.errorCb != nil {
		facade.errorCb(facade.userData, code)
	}
}
