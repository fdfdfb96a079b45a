package sim_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/device/sim"
)

// collector records pushed events so the device contract can be checked
// without the facade in the loop.
type collector struct {
	mutex  sync.Mutex
	events []webxr.Event
}

func (c *collector) Push(ev webxr.Event) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) drain() []webxr.Event {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := c.events
	c.events = nil
	return out
}

func boundDevice(t *testing.T, cfg sim.Config) (*sim.Device, *collector) {
	t.Helper()
	device := sim.New(cfg)
	sink := &collector{}
	device.Bind(sink)
	return device, sink
}

func TestCapabilitiesReflectConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	device, _ := boundDevice(t, cfg)
	caps := device.Capabilities()
	assert.True(t, caps.XR)
	assert.True(t, caps.Graphics)

	cfg.XRCapable = false
	cfg.GraphicsCapable = false
	device, _ = boundDevice(t, cfg)
	caps = device.Capabilities()
	assert.False(t, caps.XR)
	assert.False(t, caps.Graphics)
}

func TestSessionSupportedFollowsConfiguredModes(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.SupportedModes = []webxr.SessionMode{webxr.SESSION_MODE_IMMERSIVE_AR}
	device, _ := boundDevice(t, cfg)

	assert.True(t, device.SessionSupported(webxr.SESSION_MODE_IMMERSIVE_AR))
	assert.False(t, device.SessionSupported(webxr.SESSION_MODE_IMMERSIVE_VR))
	assert.False(t, device.SessionSupported(webxr.SESSION_MODE_INLINE))
}

func TestStepFrameWithoutSessionPushesNothing(t *testing.T) {
	device, sink := boundDevice(t, sim.DefaultConfig())
	device.StepFrames(5)
	assert.Empty(t, sink.drain())
}

func TestStepFramesPerSession(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.FrameIntervalMS = 10
	device, sink := boundDevice(t, cfg)

	device.RequestSession(webxr.SESSION_MODE_IMMERSIVE_VR, webxr.SESSION_FEATURE_LOCAL, webxr.SESSION_FEATURE_LOCAL)
	require.Len(t, sink.drain(), 1) // the grant

	device.StepFrames(3)
	events := sink.drain()
	require.Len(t, events, 3)

	// A restarted session steps the same script again.
	device.EndSession()
	device.RequestSession(webxr.SESSION_MODE_IMMERSIVE_VR, webxr.SESSION_FEATURE_LOCAL, webxr.SESSION_FEATURE_LOCAL)
	sink.drain()
	device.StepFrames(3)
	assert.Len(t, sink.drain(), 3)
}

func TestEndSessionIdempotent(t *testing.T) {
	device, sink := boundDevice(t, sim.DefaultConfig())

	device.EndSession()
	assert.Empty(t, sink.drain(), "ending without a session pushes nothing")

	device.RequestSession(webxr.SESSION_MODE_INLINE, webxr.SESSION_FEATURE_LOCAL, webxr.SESSION_FEATURE_LOCAL)
	sink.drain()
	device.EndSession()
	require.Len(t, sink.drain(), 1)
	device.EndSession()
	assert.Empty(t, sink.drain())
}

func TestSourceIDsUniqueWhileConnected(t *testing.T) {
	device, sink := boundDevice(t, sim.DefaultConfig())
	device.RequestSession(webxr.SESSION_MODE_IMMERSIVE_VR, webxr.SESSION_FEATURE_LOCAL, webxr.SESSION_FEATURE_LOCAL)
	sink.drain()

	left := device.ConnectSource(webxr.HANDEDNESS_LEFT, webxr.TARGET_RAY_MODE_TRACKED_POINTER)
	right := device.ConnectSource(webxr.HANDEDNESS_RIGHT, webxr.TARGET_RAY_MODE_TRACKED_POINTER)
	require.NotEqual(t, left, right)

	// Disconnecting frees the id for the next source.
	device.DisconnectSource(left)
	again := device.ConnectSource(webxr.HANDEDNESS_LEFT, webxr.TARGET_RAY_MODE_TRACKED_POINTER)
	assert.Equal(t, left, again)
}
