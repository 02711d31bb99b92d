package synth

// ----- Stage ----- //

// Stage is the envelope region a position falls in. It is derived on demand
// and never stored.
type Stage int

const (
	StageOff Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

var stageNames = [...]string{"off", "attack", "decay", "sustain", "release"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// ----- Envelope ----- //

/*
  v +     x
    |    / \
    |   /   \
  s +  /     x------x
    | /              \
    |/                \
  0 +-----+---+------+---
    |a    |d  |      |d |
*/
// Envelope is an ADSR contour where release reuses the decay time.
type Envelope struct {
	attack  float64 // ms
	decay   float64 // ms, also used for release
	sustain float64 // 0-1, fraction of velocity

	held           bool
	velocity       float64
	attackPos      int64
	releasePos     int64
	valueAtAttack  float64
	valueAtRelease float64
}

func NewEnvelope() *Envelope {
	return &Envelope{attack: 5, decay: 5, sustain: 1}
}

func (e *Envelope) SetAttack(ms float64)    { e.attack = ms }
func (e *Envelope) SetDecay(ms float64)     { e.decay = ms }
func (e *Envelope) SetSustain(frac float64) { e.sustain = frac }

func (e *Envelope) Held() bool {
	return e.held
}

func (e *Envelope) BeginAttack(pos int64, velocity float64) {
	e.valueAtAttack = e.Value(pos)
	e.velocity = velocity
	e.attackPos = pos
	e.held = true
}

func (e *Envelope) BeginRelease(pos int64) {
	e.valueAtRelease = e.Value(pos)
	e.releasePos = pos
	e.held = false
}

// Silence drops the envelope to zero immediately and anchors it at 0.
func (e *Envelope) Silence() {
	e.held = false
	e.velocity = 0
	e.attackPos = 0
	e.releasePos = 0
	e.valueAtAttack = 0
	e.valueAtRelease = 0
}

func (e *Envelope) Stage(pos int64) Stage {
	elapsed := elapsedMs(pos, e.attackPos)
	switch {
	case e.held && elapsed < e.attack:
		return StageAttack
	case e.held && elapsed < e.attack+e.decay:
		return StageDecay
	case e.held:
		return StageSustain
	case e.valueAtRelease > 0 && elapsedMs(pos, e.releasePos) < e.decay:
		return StageRelease
	}
	return StageOff
}

func (e *Envelope) Value(pos int64) float64 {
	elapsed := elapsedMs(pos, e.attackPos)
	switch e.Stage(pos) {
	case StageAttack:
		return (elapsed/e.attack)*(e.velocity-e.valueAtAttack) + e.valueAtAttack
	case StageDecay:
		low := e.velocity * e.sustain
		t := (elapsed - e.attack) / e.decay
		return (1-t)*(e.velocity-low) + low
	case StageSustain:
		return e.velocity * e.sustain
	case StageRelease:
		t := elapsedMs(pos, e.releasePos) / e.decay
		return (1 - t) * e.valueAtRelease
	}
	return 0
}
