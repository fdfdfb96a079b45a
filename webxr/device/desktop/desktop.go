// Package desktop provides an inline-only device backed by a desktop window,
// a flat "magic window" preview for machines without an XR runtime. Mouse
// presses on the window surface act as the primary action of a screen-mode
// input source.
package desktop

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/core"
	"github.com/spaghettifunk/immerse/webxr/math"
)

const eyeHeight float32 = 1.6

const monoFovY float32 = 60.0 * math.K_DEG2RAD_MULTIPLIER

func init() {
	// GLFW event handling must run on the main OS thread, which is also the
	// facade's logical thread.
	runtime.LockOSThread()
}

type Device struct {
	title  string
	width  int
	height int

	sink      webxr.EventSink
	window    *glfw.Window
	active    bool
	sourceID  int
	hasSource bool
	startTime float64
}

func New(title string, width, height int) *Device {
	return &Device{
		title:  title,
		width:  width,
		height: height,
	}
}

func (d *Device) Bind(sink webxr.EventSink) {
	d.sink = sink
}

func (d *Device) Capabilities() webxr.DeviceCapabilities {
	return webxr.DeviceCapabilities{XR: true, Graphics: true}
}

// SessionSupported: a desktop window can only back an inline session.
func (d *Device) SessionSupported(mode webxr.SessionMode) bool {
	return mode == webxr.SESSION_MODE_INLINE
}

func (d *Device) RequestSession(mode webxr.SessionMode, requiredFeature, optionalFeature webxr.SessionFeature) {
	if !d.SessionSupported(mode) {
		d.sink.Push(webxr.SessionRejectedEvent(mode, webxr.ERR_SESSION_UNSUPPORTED))
		return
	}
	if d.active {
		return
	}

	if err := glfw.Init(); err != nil {
		core.LogError("desktop: failed to initialize glfw: %s", err)
		d.sink.Push(webxr.SessionRejectedEvent(mode, webxr.ERR_GL_INCAPABLE))
		return
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(d.width, d.height, d.title, nil, nil)
	if err != nil {
		core.LogError("desktop: failed to create window: %s", err)
		d.sink.Push(webxr.SessionRejectedEvent(mode, webxr.ERR_GL_INCAPABLE))
		return
	}
	window.MakeContextCurrent()
	d.window = window
	d.active = true
	d.startTime = glfw.GetTime()

	d.window.SetMouseButtonCallback(d.mouseButtonCallback)
	d.window.SetFocusCallback(d.focusCallback)

	d.sink.Push(webxr.SessionGrantedEvent(mode))

	// The whole window surface is one screen-mode input source.
	d.sourceID = core.IdentifierAcquireNewID(d)
	d.hasSource = true
	d.sink.Push(webxr.SourceConnectedEvent(webxr.InputSource{
		ID:            d.sourceID,
		Handedness:    webxr.HANDEDNESS_NONE,
		TargetRayMode: webxr.TARGET_RAY_MODE_SCREEN,
	}))
}

func (d *Device) EndSession() {
	if !d.active {
		return
	}
	d.active = false
	if d.hasSource {
		d.sink.Push(webxr.SourceDisconnectedEvent(d.sourceID))
		_ = core.IdentifierReleaseID(d.sourceID)
		d.hasSource = false
	}
	d.sink.Push(webxr.SessionEndedEvent(webxr.SESSION_MODE_INLINE))
	d.window.Destroy()
	d.window = nil
	glfw.Terminate()
}

// Pump polls window events and pushes one frame. The application calls it
// once per iteration of its main loop, on the facade's logical thread.
// Returns false once the window has been closed and the session ended.
func (d *Device) Pump() bool {
	if !d.active {
		return false
	}
	glfw.PollEvents()
	if d.window.ShouldClose() {
		d.EndSession()
		return false
	}

	width, height := d.window.GetFramebufferSize()
	now := int64((glfw.GetTime() - d.startTime) * 1000.0)
	pose := math.NewRigidTransform(math.NewVec3(0, eyeHeight, 0), math.NewQuatIdentity())

	frame := &webxr.FrameState{
		// The window's default framebuffer.
		FramebufferID: 0,
		Time:          now,
		HeadPose:      pose,
		Eyes: []webxr.EyeState{
			{
				Pose:     pose,
				FovY:     monoFovY,
				Viewport: [4]int{0, 0, width, height},
			},
		},
	}
	if d.hasSource {
		frame.SourcePoses = map[int]webxr.SourcePose{
			d.sourceID: {
				TargetRay:    pose,
				HasTargetRay: true,
			},
		}
	}
	d.sink.Push(webxr.FrameDeliveredEvent(frame))
	return true
}

func (d *Device) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || !d.hasSource {
		return
	}
	switch action {
	case glfw.Press:
		d.sink.Push(webxr.SelectStartEvent(d.sourceID))
	case glfw.Release:
		d.sink.Push(webxr.SelectEvent(d.sourceID))
		d.sink.Push(webxr.SelectEndEvent(d.sourceID))
	}
}

func (d *Device) focusCallback(w *glfw.Window, focused bool) {
	d.sink.Push(webxr.VisibilityEvent(!focused))
}
