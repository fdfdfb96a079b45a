package testbed

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/config"
	"github.com/spaghettifunk/immerse/webxr/core"
	"github.com/spaghettifunk/immerse/webxr/device/desktop"
	"github.com/spaghettifunk/immerse/webxr/device/sim"
	"github.com/spaghettifunk/immerse/webxr/math"
)

// How long the simulated session runs before the app asks to leave.
const simSessionFrames = 600

// App drives a full session round trip against the configured device
// backend: probe, request, render, input, exit.
type App struct {
	config *config.Config
	// Path of the loaded config file, empty when running on defaults.
	// When set, the file is watched and edits apply on the next loop turn.
	configPath string

	simDevice *sim.Device
	pump      func() bool

	reloaded atomic.Pointer[config.Config]

	frames       int
	sessionEnded bool
	quit         atomic.Bool
}

func New(cfg *config.Config, configPath string) *App {
	return &App{config: cfg, configPath: configPath}
}

// Quit asks the app to leave the session at the next loop iteration. Safe
// to call from any goroutine.
func (a *App) Quit() {
	a.quit.Store(true)
}

func (a *App) Run() error {
	core.SetLogLevel(a.config.Level())

	var device webxr.Device
	switch a.config.Device {
	case "desktop":
		win := desktop.New("Immerse Testbed", 1280, 720)
		device = win
		a.pump = win.Pump
	case "sim":
		a.simDevice = sim.New(sim.DefaultConfig())
		device = a.simDevice
		a.pump = func() bool {
			a.simDevice.StepFrame()
			time.Sleep(time.Millisecond)
			return true
		}
	default:
		return fmt.Errorf("unknown device backend %q", a.config.Device)
	}

	var initFailed webxr.Error
	webxr.Init(device, a.onFrame, a.onSessionStart, a.onSessionEnd, func(userData interface{}, code webxr.Error) {
		initFailed = code
		a.onError(userData, code)
	}, a)
	if initFailed != 0 {
		return fmt.Errorf("device unusable: %s", initFailed)
	}

	webxr.SetSessionBlurCallback(a.onBlur, a)
	webxr.SetSessionFocusCallback(a.onFocus, a)
	webxr.SetSelectStartCallback(a.onSelectStart, a)
	webxr.SetSelectCallback(a.onSelect, a)
	webxr.SetSelectEndCallback(a.onSelectEnd, a)

	// Observe session telemetry through the event bus as well.
	core.EventRegister(core.EVENT_CODE_SESSION_STARTED, a, func(ctx core.EventContext, listener interface{}) bool {
		ev := ctx.Data.(*core.SessionEvent)
		core.LogDebug("bus: session started in mode %d", ev.Mode)
		return false
	})

	if a.configPath != "" {
		watcher, err := config.Watch(a.configPath, func(cfg *config.Config) {
			// Watcher goroutine; the loop below applies it.
			a.reloaded.Store(cfg)
		})
		if err != nil {
			core.LogWarn("config watch unavailable: %s", err)
		} else {
			defer watcher.Close()
		}
	}

	mode := a.config.SessionMode()
	required, optional := a.config.Features()
	webxr.IsSessionSupported(mode, func(probed webxr.SessionMode, supported bool) {
		if !supported {
			core.LogWarn("%s not supported, staying inline", probed)
			mode = webxr.SESSION_MODE_INLINE
		}
		// Stands in for the user-activation event a host requires.
		webxr.RequestSession(mode, required, optional)
	})

	for !a.sessionEnded {
		if cfg := a.reloaded.Swap(nil); cfg != nil {
			core.SetLogLevel(cfg.Level())
			webxr.SetProjectionParams(cfg.Projection.Near, cfg.Projection.Far)
			core.LogInfo("config applied: near=%.2f far=%.2f", cfg.Projection.Near, cfg.Projection.Far)
		}
		if a.quit.Load() {
			webxr.RequestExit()
			a.quit.Store(false)
		}
		if !a.pump() {
			// Window closed; drain the pending session-end events.
			webxr.ProcessEvents()
			break
		}
		webxr.ProcessEvents()
	}

	webxr.Shutdown()
	return nil
}

func (a *App) onSessionStart(userData interface{}, mode webxr.SessionMode) {
	core.LogInfo("session started: %s (id %s)", mode, webxr.SessionID())
	if a.simDevice != nil {
		// Hand the simulated player a pair of controllers.
		a.simDevice.ConnectSource(webxr.HANDEDNESS_LEFT, webxr.TARGET_RAY_MODE_TRACKED_POINTER)
		a.simDevice.ConnectSource(webxr.HANDEDNESS_RIGHT, webxr.TARGET_RAY_MODE_TRACKED_POINTER)
	}
}

func (a *App) onSessionEnd(userData interface{}, mode webxr.SessionMode) {
	core.LogInfo("session ended: %s", mode)
	a.sessionEnded = true
}

func (a *App) onFrame(userData interface{}, framebufferID int, time int64, headPose *math.RigidTransform, views *[2]webxr.View, viewCount int) {
	a.frames++

	// A real application binds framebufferID and renders views[0:viewCount]
	// here. The testbed just exercises the per-frame queries.
	var sources [4]webxr.InputSource
	n := webxr.GetInputSources(sources[:])
	for i := 0; i < n; i++ {
		var pose math.RigidTransform
		if webxr.GetInputPose(&sources[i], &pose, webxr.INPUT_POSE_TARGET_RAY) {
			if a.frames%120 == 0 {
				core.LogDebug("source %d ray at (%.2f %.2f %.2f)",
					sources[i].ID, pose.Position.X, pose.Position.Y, pose.Position.Z)
			}
		}
	}

	if a.frames%120 == 0 {
		fps, frameTime := core.MetricsFrame()
		core.LogDebug("t=%dms views=%d head=(%.2f %.2f %.2f) fps=%.0f avg=%.2fms",
			time, viewCount, headPose.Position.X, headPose.Position.Y, headPose.Position.Z, fps, frameTime)
	}

	if a.simDevice != nil {
		// Script a select gesture halfway through, then wind the session down.
		switch a.frames {
		case simSessionFrames / 2:
			var buf [1]webxr.InputSource
			if webxr.GetInputSources(buf[:]) == 1 {
				a.simDevice.PressSelect(buf[0].ID)
			}
		case simSessionFrames/2 + 10:
			var buf [1]webxr.InputSource
			if webxr.GetInputSources(buf[:]) == 1 {
				a.simDevice.ReleaseSelect(buf[0].ID)
			}
		case simSessionFrames:
			webxr.RequestExit()
		}
	}
}

func (a *App) onError(userData interface{}, code webxr.Error) {
	core.LogError("xr failure: %s", code)
	if code == webxr.ERR_SESSION_UNSUPPORTED {
		a.sessionEnded = true
	}
}

func (a *App) onBlur(userData interface{}, mode webxr.SessionMode) {
	core.LogInfo("session blurred, pausing simulation")
}

func (a *App) onFocus(userData interface{}, mode webxr.SessionMode) {
	core.LogInfo("session focused, resuming")
}

func (a *App) onSelectStart(source *webxr.InputSource, userData interface{}) {
	core.LogInfo("select start on source %d (%s)", source.ID, source.Handedness)
}

func (a *App) onSelect(source *webxr.InputSource, userData interface{}) {
	core.LogInfo("select on source %d", source.ID)
}

func (a *App) onSelectEnd(source *webxr.InputSource, userData interface{}) {
	core.LogInfo("select end on source %d", source.ID)
}
