// Package sim provides a scriptable XR device for tests and headless
// development. Frames are stepped explicitly (or pumped by Run), so every
// timestamp and pose it produces is deterministic.
package sim

import (
	"context"
	stdmath "math"
	"sync"
	"time"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/core"
	"github.com/spaghettifunk/immerse/webxr/math"
)

const (
	// Per-eye render target size of the simulated HMD.
	eyeWidth  = 1680
	eyeHeight = 1512

	monoFovY   float32 = 60.0 * math.K_DEG2RAD_MULTIPLIER
	stereoFovY float32 = 100.0 * math.K_DEG2RAD_MULTIPLIER
)

type Config struct {
	// Whether the simulated host exposes an XR API at all.
	XRCapable bool
	// Whether the simulated graphics context can back an immersive layer.
	GraphicsCapable bool
	// Session modes the device grants.
	SupportedModes []webxr.SessionMode
	// Framebuffer handle reported with every frame.
	FramebufferID int
	// Milliseconds the session clock advances per stepped frame.
	FrameIntervalMS int64
	// Standing eye height in meters.
	EyeHeight float32
	// Interpupillary distance in meters.
	IPD float32
}

// DefaultConfig simulates a VR-capable headset at 90Hz.
func DefaultConfig() Config {
	return Config{
		XRCapable:       true,
		GraphicsCapable: true,
		SupportedModes: []webxr.SessionMode{
			webxr.SESSION_MODE_INLINE,
			webxr.SESSION_MODE_IMMERSIVE_VR,
		},
		FramebufferID:   1,
		FrameIntervalMS: 11,
		EyeHeight:       1.6,
		IPD:             0.064,
	}
}

type sourceState struct {
	source webxr.InputSource
	// Lateral offset of the simulated hand, meters.
	offsetX float32
}

type Device struct {
	config Config

	mutex   sync.Mutex
	sink    webxr.EventSink
	active  bool
	mode    webxr.SessionMode
	now     int64
	sources []*sourceState
}

func New(config Config) *Device {
	return &Device{config: config}
}

func (d *Device) Bind(sink webxr.EventSink) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.sink = sink
}

func (d *Device) Capabilities() webxr.DeviceCapabilities {
	return webxr.DeviceCapabilities{
		XR:       d.config.XRCapable,
		Graphics: d.config.GraphicsCapable,
	}
}

func (d *Device) SessionSupported(mode webxr.SessionMode) bool {
	for _, m := range d.config.SupportedModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (d *Device) RequestSession(mode webxr.SessionMode, requiredFeature, optionalFeature webxr.SessionFeature) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.SessionSupported(mode) {
		core.LogDebug("sim: rejecting %s session", mode)
		d.sink.Push(webxr.SessionRejectedEvent(mode, webxr.ERR_SESSION_UNSUPPORTED))
		return
	}
	core.LogDebug("sim: granting %s session (required=%s optional=%s)", mode, requiredFeature, optionalFeature)
	d.active = true
	d.mode = mode
	d.now = 0
	d.sink.Push(webxr.SessionGrantedEvent(mode))
}

func (d *Device) EndSession() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.active {
		return
	}
	d.active = false
	for _, s := range d.sources {
		_ = core.IdentifierReleaseID(s.source.ID)
	}
	d.sources = nil
	d.sink.Push(webxr.SessionEndedEvent(d.mode))
}

// StepFrame advances the session clock one interval and pushes a frame.
// Without an active session it does nothing.
func (d *Device) StepFrame() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.active {
		return
	}
	d.now += d.config.FrameIntervalMS
	d.sink.Push(webxr.FrameDeliveredEvent(d.frameState()))
}

// StepFrames pushes n consecutive frames.
func (d *Device) StepFrames(n int) {
	for i := 0; i < n; i++ {
		d.StepFrame()
	}
}

// ConnectSource attaches a simulated input source and returns its id.
func (d *Device) ConnectSource(handedness webxr.Handedness, rayMode webxr.TargetRayMode) int {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	offsetX := float32(0)
	switch handedness {
	case webxr.HANDEDNESS_LEFT:
		offsetX = -0.2
	case webxr.HANDEDNESS_RIGHT:
		offsetX = 0.2
	}
	state := &sourceState{
		source: webxr.InputSource{
			ID:            core.IdentifierAcquireNewID(d),
			Handedness:    handedness,
			TargetRayMode: rayMode,
		},
		offsetX: offsetX,
	}
	d.sources = append(d.sources, state)
	d.sink.Push(webxr.SourceConnectedEvent(state.source))
	return state.source.ID
}

// DisconnectSource detaches the source with the given id; the id becomes
// available for reuse.
func (d *Device) DisconnectSource(id int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for i, s := range d.sources {
		if s.source.ID == id {
			d.sources = append(d.sources[:i], d.sources[i+1:]...)
			_ = core.IdentifierReleaseID(id)
			d.sink.Push(webxr.SourceDisconnectedEvent(id))
			return
		}
	}
}

// PressSelect begins the primary action gesture on the given source.
func (d *Device) PressSelect(id int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.sink.Push(webxr.SelectStartEvent(id))
}

// ReleaseSelect commits and ends the primary action gesture on the
// given source.
func (d *Device) ReleaseSelect(id int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.sink.Push(webxr.SelectEvent(id))
	d.sink.Push(webxr.SelectEndEvent(id))
}

// Blur simulates the host hiding the session (overlay, headset removed).
func (d *Device) Blur() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.sink.Push(webxr.VisibilityEvent(true))
}

// Focus simulates the host restoring visibility.
func (d *Device) Focus() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.sink.Push(webxr.VisibilityEvent(false))
}

// Run pumps frames at the configured interval until the context is
// cancelled. Used by applications that want a live loop rather than
// explicit stepping.
func (d *Device) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(d.config.FrameIntervalMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.StepFrame()
		}
	}
}

// frameState synthesizes the device tracking for the current instant.
// Callers must hold the mutex.
func (d *Device) frameState() *webxr.FrameState {
	seconds := float32(d.now) / 1000.0

	// The head slowly yaws side to side around the tracking origin.
	yaw := 0.3 * float32(stdmath.Sin(float64(seconds)))
	headOrientation := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), yaw, true)
	headPosition := math.NewVec3(0, d.config.EyeHeight, 0)
	headPose := math.NewRigidTransform(headPosition, headOrientation)

	frame := &webxr.FrameState{
		FramebufferID: d.config.FramebufferID,
		Time:          d.now,
		HeadPose:      headPose,
		SourcePoses:   make(map[int]webxr.SourcePose, len(d.sources)),
	}

	if d.mode.Immersive() {
		half := d.config.IPD * 0.5
		left := headPose.TransformPoint(math.NewVec3(-half, 0, 0))
		right := headPose.TransformPoint(math.NewVec3(half, 0, 0))
		frame.Eyes = []webxr.EyeState{
			{
				Pose:     math.NewRigidTransform(left, headOrientation),
				FovY:     stereoFovY,
				Viewport: [4]int{0, 0, eyeWidth, eyeHeight},
			},
			{
				Pose:     math.NewRigidTransform(right, headOrientation),
				FovY:     stereoFovY,
				Viewport: [4]int{eyeWidth, 0, eyeWidth, eyeHeight},
			},
		}
	} else {
		frame.Eyes = []webxr.EyeState{
			{
				Pose:     headPose,
				FovY:     monoFovY,
				Viewport: [4]int{0, 0, eyeWidth, eyeHeight},
			},
		}
	}

	for _, s := range d.sources {
		grip := math.NewRigidTransform(
			math.NewVec3(s.offsetX, d.config.EyeHeight-0.4, -0.3),
			math.NewQuatIdentity(),
		)
		// The pointing ray pitches down slightly from the grip.
		ray := math.NewRigidTransform(
			grip.Position,
			math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), -30.0*math.K_DEG2RAD_MULTIPLIER, true),
		)
		frame.SourcePoses[s.source.ID] = webxr.SourcePose{
			Grip:         grip,
			TargetRay:    ray,
			HasGrip:      s.source.TargetRayMode == webxr.TARGET_RAY_MODE_TRACKED_POINTER,
			HasTargetRay: true,
		}
	}

	return frame
}
