package capture

// DefaultSettleFrames is the number of still frames before a capture fires.
const DefaultSettleFrames = 10

// Trigger requests a capture once the scene has been still for a number of frames.
type Trigger struct {
	settle  int
	counter int
	armed   bool
}

// NewTrigger creates a trigger that starts armed, so the first still
// period after startup produces a capture.
func NewTrigger(settleFrames int) *Trigger {
	if settleFrames < 0 {
		settleFrames = 0
	}
	return &Trigger{settle: settleFrames, counter: settleFrames, armed: true}
}

// Touch marks the scene as changed and restarts the countdown.
func (t *Trigger) Touch() {
	t.counter = t.settle
	t.armed = true
}

// Armed reports whether a capture is still owed.
func (t *Trigger) Armed() bool {
	return t.armed
}

// Tick advances one frame. It returns true exactly once per settled change.
func (t *Trigger) Tick() bool {
	if !t.armed {
		return false
	}
	if t.counter > 0 {
		t.counter--
		return false
	}
	t.armed = false
	return true
}

// Rearm restores a fired trigger without restarting the countdown,
// used when a capture could not be started this frame.
func (t *Trigger) Rearm() {
	t.armed = true
	t.counter = 0
}
