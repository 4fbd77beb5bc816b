package models

// VisibilityFloor is the detector confidence a landmark must exceed to be
// included in a snapshot.
const VisibilityFloor = 0.5

// JointNames lists the 33 pose landmarks in provider index order.
var JointNames = [33]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

var jointIndex = func() map[string]int {
	m := make(map[string]int, len(JointNames))
	for i, name := range JointNames {
		m[name] = i
	}
	return m
}()

// IsKnownJoint reports whether name is one of JointNames.
func IsKnownJoint(name string) bool {
	_, ok := jointIndex[name]
	return ok
}

// Point is an image-normalized 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawLandmark is a single landmark as reported by the pose provider.
type RawLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility" validate:"gte=0,lte=1"`
}

// Landmarks is a snapshot of the joints observable in one frame.
// A missing key means the joint is not currently visible.
type Landmarks map[string]Point

// VisibleLandmarks keeps the named landmarks whose visibility exceeds
// VisibilityFloor.
func VisibleLandmarks(raw map[string]RawLandmark) Landmarks {
	lm := make(Landmarks, len(raw))
	for name, r := range raw {
		if r.Visibility > VisibilityFloor {
			lm[name] = Point{X: r.X, Y: r.Y}
		}
	}
	return lm
}

// IndexedLandmarks converts a provider's positional landmark list (JointNames
// order) into a snapshot. Entries past the known joints are ignored.
func IndexedLandmarks(raw []RawLandmark) Landmarks {
	lm := make(Landmarks, len(raw))
	for i, r := range raw {
		if i >= len(JointNames) {
			break
		}
		if r.Visibility > VisibilityFloor {
			lm[JointNames[i]] = Point{X: r.X, Y: r.Y}
		}
	}
	return lm
}
