package webxr

import (
	"github.com/spaghettifunk/immerse/webxr/math"
)

// The numeric values of every enum below are part of the binary contract
// shared with host glue layers and must not be renumbered.

/** Errors reported through the error callback */
type Error int

const (
	/** XR device API not exposed by this host */
	ERR_API_UNSUPPORTED Error = -2
	/** graphics context cannot back an immersive layer */
	ERR_GL_INCAPABLE Error = -3
	/** given session mode not supported */
	ERR_SESSION_UNSUPPORTED Error = -4
	/** host-specific: a session is already active or pending */
	ERR_SESSION_ACTIVE Error = -5
)

func (e Error) String() string {
	switch e {
	case ERR_API_UNSUPPORTED:
		return "api-unsupported"
	case ERR_GL_INCAPABLE:
		return "gl-incapable"
	case ERR_SESSION_UNSUPPORTED:
		return "session-unsupported"
	case ERR_SESSION_ACTIVE:
		return "session-active"
	}
	return "unknown"
}

/** Input source handedness */
type Handedness int

const (
	HANDEDNESS_NONE  Handedness = -1
	HANDEDNESS_LEFT  Handedness = 0
	HANDEDNESS_RIGHT Handedness = 1
)

func (h Handedness) String() string {
	switch h {
	case HANDEDNESS_LEFT:
		return "left"
	case HANDEDNESS_RIGHT:
		return "right"
	}
	return "none"
}

/** Input source target ray mode */
type TargetRayMode int

const (
	TARGET_RAY_MODE_GAZE            TargetRayMode = 0
	TARGET_RAY_MODE_TRACKED_POINTER TargetRayMode = 1
	TARGET_RAY_MODE_SCREEN          TargetRayMode = 2
)

func (t TargetRayMode) String() string {
	switch t {
	case TARGET_RAY_MODE_TRACKED_POINTER:
		return "tracked-pointer"
	case TARGET_RAY_MODE_SCREEN:
		return "screen"
	}
	return "gaze"
}

/** Session mode */
type SessionMode int

const (
	SESSION_MODE_INLINE       SessionMode = 0 /** "inline" */
	SESSION_MODE_IMMERSIVE_VR SessionMode = 1 /** "immersive-vr" */
	SESSION_MODE_IMMERSIVE_AR SessionMode = 2 /** "immersive-ar" */
)

func (s SessionMode) String() string {
	switch s {
	case SESSION_MODE_IMMERSIVE_VR:
		return "immersive-vr"
	case SESSION_MODE_IMMERSIVE_AR:
		return "immersive-ar"
	}
	return "inline"
}

// Immersive reports whether the mode renders exclusively on the XR device.
func (s SessionMode) Immersive() bool {
	return s == SESSION_MODE_IMMERSIVE_VR || s == SESSION_MODE_IMMERSIVE_AR
}

/** Session reference-space and capability features */
type SessionFeature int

const (
	SESSION_FEATURE_LOCAL         SessionFeature = 0 /** "local" */
	SESSION_FEATURE_LOCAL_FLOOR   SessionFeature = 1 /** "local-floor" */
	SESSION_FEATURE_BOUNDED_FLOOR SessionFeature = 2 /** "bounded-floor" */
	SESSION_FEATURE_UNBOUNDED     SessionFeature = 3 /** "unbounded" */
	SESSION_FEATURE_HIT_TEST      SessionFeature = 4 /** "hit-test" */
)

func (f SessionFeature) String() string {
	switch f {
	case SESSION_FEATURE_LOCAL_FLOOR:
		return "local-floor"
	case SESSION_FEATURE_BOUNDED_FLOOR:
		return "bounded-floor"
	case SESSION_FEATURE_UNBOUNDED:
		return "unbounded"
	case SESSION_FEATURE_HIT_TEST:
		return "hit-test"
	}
	return "local"
}

/** Which space an input pose query targets */
type InputPoseMode int

const (
	INPUT_POSE_GRIP       InputPoseMode = 0 /** grip space */
	INPUT_POSE_TARGET_RAY InputPoseMode = 1 /** target ray space */
)

/**
 * One eye's render descriptor for a frame. Valid only for the duration of
 * the frame callback it is delivered in; copy to retain.
 */
type View struct {
	/* eye pose in the tracking origin's frame */
	Pose math.RigidTransform
	/* projection matrix, column-major */
	ProjectionMatrix math.Mat4
	/* x, y, width, height of the eye viewport on the target framebuffer */
	Viewport [4]int
}

/**
 * Identity record for a tracked input device. The id is stable while the
 * source stays connected and may be reused after disconnection.
 */
type InputSource struct {
	ID            int
	Handedness    Handedness
	TargetRayMode TargetRayMode
}

/**
Callback for frame rendering.

@param userData User value passed to Init
@param framebufferID Destination framebuffer to bind before rendering; valid for this invocation only
@param time Frame timestamp in milliseconds, monotonic within a session
@param headPose Transformation of the XR device relative to the tracking origin
@param views Array holding viewCount valid views; entries beyond viewCount are undefined
@param viewCount Number of valid views, 1 (mono) or 2 (stereo)
*/
type FrameCallback func(userData interface{}, framebufferID int, time int64, headPose *math.RigidTransform, views *[2]View, viewCount int)

/**
Callback for session lifecycle transitions (start, end, blur, focus).

@param userData User value passed to Init or the callback setter
@param mode The session mode
*/
type SessionCallback func(userData interface{}, mode SessionMode)

/**
Callback for errors.

@param userData User value passed to Init
@param code Error code
*/
type ErrorCallback func(userData interface{}, code Error)

/**
Callback for IsSessionSupported probe results.

@param mode The session mode that was probed
@param supported Whether the mode is supported by this device
*/
type SessionSupportedCallback func(mode SessionMode, supported bool)

/**
Callback for the primary input action. The source reference is borrowed for
the duration of the callback only.

@param source The input source the action happened on
@param userData User value passed to the callback setter
*/
type InputCallback func(source *InputSource, userData interface{})
