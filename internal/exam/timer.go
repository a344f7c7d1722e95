package exam

// DefaultWarnAt is the remaining-seconds mark at which the one-shot
// "five minutes left" warning fires.
const DefaultWarnAt = 300

// Timer is the countdown state machine. It has no clock of its own: Tick is
// called once per second by a real driver (see session.Manager) or by a test
// harness advancing logical time. If no driver ever ticks it, the attempt
// simply runs without countdown enforcement.
type Timer struct {
	remaining int
	warnAt    int
	warned    bool
	expired   bool
	onWarning func()
	onExpiry  func()
}

// NewTimer starts at durationMin*60 seconds remaining. Either callback may
// be nil.
func NewTimer(durationMin int, onWarning, onExpiry func()) *Timer {
	return &Timer{
		remaining: durationMin * 60,
		warnAt:    DefaultWarnAt,
		onWarning: onWarning,
		onExpiry:  onExpiry,
	}
}

// SetWarnAt overrides the warning mark. Only meaningful before ticking starts.
func (t *Timer) SetWarnAt(seconds int) { t.warnAt = seconds }

// Tick advances the countdown by one second. Remaining never goes below 0.
// The warning fires exactly once, at the tick that lands on warnAt; expiry
// fires at 0 and stops the timer for good. The warn mark is only reachable
// from above: an exam that starts at or below warnAt never warns, including
// the exact-equality case where duration*60 == warnAt.
func (t *Timer) Tick() {
	if t.expired {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == t.warnAt && !t.warned {
		t.warned = true
		if t.onWarning != nil {
			t.onWarning()
		}
	}
	if t.remaining == 0 {
		t.expired = true
		if t.onExpiry != nil {
			t.onExpiry()
		}
	}
}

func (t *Timer) Remaining() int { return t.remaining }
func (t *Timer) Warned() bool   { return t.warned }
func (t *Timer) Expired() bool  { return t.expired }
