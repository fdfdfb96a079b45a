package webxr

import (
	"github.com/spaghettifunk/immerse/webxr/core"
	"github.com/spaghettifunk/immerse/webxr/math"
)

// SetSelectCallback registers the handler for the commit moment of the
// primary input action. A second registration replaces the first.
func SetSelectCallback(cb InputCallback, userData interface{}) {
	if !isInitialized {
		return
	}
	facade.selectCb = cb
	facade.selectUserData = userData
}

// SetSelectStartCallback registers the handler for the press onset of the
// primary input action. A second registration replaces the first.
func SetSelectStartCallback(cb InputCallback, userData interface{}) {
	if !isInitialized {
		return
	}
	facade.selectStartCb = cb
	facade.selectStartUserData = userData
}

// SetSelectEndCallback registers the handler for the press release of the
// primary input action. A second registration replaces the first.
func SetSelectEndCallback(cb InputCallback, userData interface{}) {
	if !isInitialized {
		return
	}
	facade.selectEndCb = cb
	facade.selectEndUserData = userData
}

/**
GetInputSources copies up to len(out) connected input source records into
the caller-supplied buffer and returns the number written. Outside an active
session nothing is written. Source ordering is stable within a single
session only.
*/
func GetInputSources(out []InputSource) int {
	if !isInitialized {
		return 0
	}
	if facade.state != stateActive && facade.state != stateBlurred {
		return 0
	}
	return copy(out, facade.sources)
}

/**
GetInputPose fills outPose with the requested space's pose of the named
source, relative to the tracking origin. Only callable while a frame
callback is on the stack; outside one it returns false and leaves outPose
untouched. False also means the source is gone or the space has no pose
this frame.
*/
func GetInputPose(source *InputSource, outPose *math.RigidTransform, mode InputPoseMode) bool {
	if !isInitialized || !facade.inFrame || source == nil || outPose == nil {
		return false
	}
	pose, ok := facade.framePoses[source.ID]
	if !ok {
		return false
	}
	switch mode {
	case INPUT_POSE_GRIP:
		if !pose.HasGrip {
			return false
		}
		*outPose = pose.Grip
		return true
	case INPUT_POSE_TARGET_RAY:
		if !pose.HasTargetRay {
			return false
		}
		*outPose = pose.TargetRay
		return true
	}
	return false
}

func connectSource(source InputSource) {
	if facade.state != stateActive && facade.state != stateBlurred {
		return
	}
	for _, s := range facade.sources {
		if s.ID == source.ID {
			core.LogWarn("source %d already connected, ignoring", source.ID)
			return
		}
	}
	facade.sources = append(facade.sources, source)
	core.LogDebug("source %d connected (%s, %s)", source.ID, source.Handedness, source.TargetRayMode)
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_SOURCE_CONNECTED,
		Data: &core.SourceEvent{
			ID:            source.ID,
			Handedness:    int(source.Handedness),
			TargetRayMode: int(source.TargetRayMode),
		},
	})
}

func disconnectSource(id int) {
	for i, s := range facade.sources {
		if s.ID == id {
			facade.sources = append(facade.sources[:i], facade.sources[i+1:]...)
			core.LogDebug("source %d disconnected", id)
			core.EventFire(core.EventContext{
				Type: core.EVENT_CODE_SOURCE_DISCONNECTED,
				Data: &core.SourceEvent{ID: id},
			})
			return
		}
	}
}

func findSource(id int) *InputSource {
	for i := range facade.sources {
		if facade.sources[i].ID == id {
			return &facade.sources[i]
		}
	}
	return nil
}

// dispatchSelect fires one phase of the primary action. A nil registration
// silently skips the phase; an unknown source skips the event.
func dispatchSelect(id int, cb InputCallback, userData interface{}) {
	src := findSource(id)
	if src == nil {
		return
	}
	if cb == nil {
		return
	}
	// The callback borrows the record for its duration only.
	borrowed := *src
	cb(&borrowed, userData)
}
