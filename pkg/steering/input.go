package steering

// Input is the player's control state for one tick.
type Input struct {
	TurnLeft  bool `json:"turnLeft"`
	TurnRight bool `json:"turnRight"`
	Thrust    bool `json:"thrust"`
}

// TurnFactor returns +1 when only turning left, -1 when only turning right
// and 0 otherwise.
func (in Input) TurnFactor() float64 {
	var factor float64
	if in.TurnLeft {
		factor++
	}
	if in.TurnRight {
		factor--
	}
	return factor
}

// ThrustFactor returns 1 while thrusting, else 0.
func (in Input) ThrustFactor() float64 {
	if in.Thrust {
		return 1
	}
	return 0
}

// Idle reports whether no control is active.
func (in Input) Idle() bool {
	return !in.TurnLeft && !in.TurnRight && !in.Thrust
}
