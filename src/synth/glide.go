package synth

const msPerSample = 1000.0 / SampleRate

// ----- Glide ----- //

// Glide is a linear ramp anchored to an absolute sample position.
// It stores no running value; every query interpolates from the anchor.
type Glide struct {
	length       float64 // ms
	initialValue float64
	targetValue  float64
	startPos     int64
}

func NewGlide(lengthMs float64) *Glide {
	return &Glide{length: lengthMs}
}

func (g *Glide) Length() float64 {
	return g.length
}

// SetLength changes the ramp length. A ramp in flight keeps its anchor.
func (g *Glide) SetLength(ms float64) {
	g.length = ms
}

func (g *Glide) Target() float64 {
	return g.targetValue
}

// Start ramps from the value at pos towards target.
func (g *Glide) Start(pos int64, target float64) {
	g.initialValue = g.Value(pos)
	g.targetValue = target
	g.startPos = pos
}

func (g *Glide) Value(pos int64) float64 {
	elapsed := elapsedMs(pos, g.startPos)
	if g.length > 0 && elapsed < g.length {
		return (elapsed/g.length)*(g.targetValue-g.initialValue) + g.initialValue
	}
	return g.targetValue
}

// Settle ends any ramp at its target and re-anchors at position 0.
func (g *Glide) Settle() {
	g.initialValue = g.targetValue
	g.startPos = 0
}

func elapsedMs(pos int64, since int64) float64 {
	if pos <= since {
		return 0
	}
	return float64(pos-since) * msPerSample
}
