package steering

import (
	"fmt"
	"strings"
)

// Kind selects the steering policy applied to a body.
type Kind int

const (
	// KindStatic bodies (walls) are never updated.
	KindStatic Kind = iota
	// KindPlayer bodies follow the input snapshot.
	KindPlayer
	// KindSnapTarget bodies turn to face the player instantly.
	KindSnapTarget
	// KindLimitedRotateTarget bodies turn toward the player at a bounded rate.
	KindLimitedRotateTarget
)

var kindNames = map[Kind]string{
	KindStatic:              "static",
	KindPlayer:              "player",
	KindSnapTarget:          "snap",
	KindLimitedRotateTarget: "rotate",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a configuration name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static", "wall":
		return KindStatic, nil
	case "player":
		return KindPlayer, nil
	case "snap", "snap_target", "snaptarget":
		return KindSnapTarget, nil
	case "rotate", "limited_rotate", "limitedrotatetarget":
		return KindLimitedRotateTarget, nil
	}
	return KindStatic, fmt.Errorf("unknown body kind %q", name)
}

// Body carries a body's kind and kind-specific parameters.
type Body struct {
	Name string
	Kind Kind

	// LinearSpeed is in world units per second; used by KindPlayer.
	LinearSpeed float64
	// AngularSpeed is in radians per second; used by KindPlayer and
	// KindLimitedRotateTarget.
	AngularSpeed float64
}

// Steerable reports whether the simulation updates this body.
func (b Body) Steerable() bool {
	return b.Kind != KindStatic
}

// Bodies maps every body to its kind and parameters.
type Bodies map[BodyID]Body
