// Package input turns a compact text script into per-tick player input, so
// headless sessions and tests can replay a fixed sequence of key presses.
//
// A script is a comma-separated list of segments, each "keys:ticks", where
// keys is "idle" or a "+"-joined set of left, right and thrust:
//
//	thrust:60,thrust+left:30,idle:10,right:15
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opd-ai/go-arena/pkg/steering"
)

// ErrInvalidScript wraps every parse failure.
var ErrInvalidScript = errors.New("invalid input script")

// Segment holds one input snapshot for a number of ticks.
type Segment struct {
	Input steering.Input
	Ticks uint64
}

// Script is a parsed input sequence.
type Script struct {
	Segments []Segment
	// Loop restarts the script after the last segment instead of going idle.
	Loop bool

	total uint64
}

// NewScript builds a script from segments.
func NewScript(segments ...Segment) *Script {
	s := &Script{Segments: segments}
	for _, seg := range segments {
		s.total += seg.Ticks
	}
	return s
}

// Parse reads a script. An empty or blank string yields an always-idle script.
func Parse(text string) (*Script, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewScript(), nil
	}

	var (
		segments []Segment
		total    uint64
	)
	for i, raw := range strings.Split(text, ",") {
		seg, err := parseSegment(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d %q: %v", ErrInvalidScript, i+1, raw, err)
		}
		if seg.Ticks > math.MaxUint64-total {
			return nil, fmt.Errorf("%w: segment %d %q: script longer than %d ticks", ErrInvalidScript, i+1, raw, uint64(math.MaxUint64))
		}
		total += seg.Ticks
		segments = append(segments, seg)
	}
	return NewScript(segments...), nil
}

func parseSegment(raw string) (Segment, error) {
	keys, count, ok := strings.Cut(raw, ":")
	if !ok {
		return Segment{}, errors.New(`expected "keys:ticks"`)
	}

	ticks, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return Segment{}, fmt.Errorf("tick count: %v", err)
	}
	if ticks == 0 {
		return Segment{}, errors.New("tick count must be positive")
	}

	in, err := parseKeys(keys)
	if err != nil {
		return Segment{}, err
	}
	return Segment{Input: in, Ticks: ticks}, nil
}

func parseKeys(keys string) (steering.Input, error) {
	var in steering.Input
	keys = strings.ToLower(strings.TrimSpace(keys))
	if keys == "idle" {
		return in, nil
	}

	for _, key := range strings.Split(keys, "+") {
		switch strings.TrimSpace(key) {
		case "left":
			in.TurnLeft = true
		case "right":
			in.TurnRight = true
		case "thrust", "up":
			in.Thrust = true
		default:
			return in, fmt.Errorf("unknown key %q", key)
		}
	}
	return in, nil
}

// Len returns the number of ticks the script covers once through.
func (s *Script) Len() uint64 {
	return s.total
}

// Input returns the snapshot for a zero-based tick.
func (s *Script) Input(tick uint64) steering.Input {
	if s.total == 0 {
		return steering.Input{}
	}
	if tick >= s.total {
		if !s.Loop {
			return steering.Input{}
		}
		tick %= s.total
	}
	for _, seg := range s.Segments {
		if tick < seg.Ticks {
			return seg.Input
		}
		tick -= seg.Ticks
	}
	return steering.Input{}
}

// String renders the script back into its text form.
func (s *Script) String() string {
	parts := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		var keys []string
		if seg.Input.Thrust {
			keys = append(keys, "thrust")
		}
		if seg.Input.TurnLeft {
			keys = append(keys, "left")
		}
		if seg.Input.TurnRight {
			keys = append(keys, "right")
		}
		if len(keys) == 0 {
			keys = []string{"idle"}
		}
		parts = append(parts, fmt.Sprintf("%s:%d", strings.Join(keys, "+"), seg.Ticks))
	}
	return strings.Join(parts, ",")
}
