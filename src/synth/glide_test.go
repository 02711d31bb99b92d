package synth

import "testing"

func TestGlideEndpoints(t *testing.T) {
	g := NewGlide(100)
	g.Start(1000, 1)
	expectEqual(t, g.Value(1000), 0.0)
	expectNearlyEqual(t, g.Value(1000+msToPos(50)), 0.5)
	expectNearlyEqual(t, g.Value(1000+msToPos(100)), 1)
	expectEqual(t, g.Value(1000+msToPos(101)), 1.0)
	expectEqual(t, g.Value(1000+msToPos(1000)), 1.0)
}

func TestGlideZeroLengthIsInstant(t *testing.T) {
	g := NewGlide(0)
	g.Start(10, 3)
	expectEqual(t, g.Value(10), 3.0)
	expectEqual(t, g.Value(11), 3.0)
}

func TestGlideRetriggerIsContinuous(t *testing.T) {
	g := NewGlide(100)
	g.Start(0, 1)
	for _, pos := range []int64{1, 777, msToPos(30), msToPos(99)} {
		before := g.Value(pos)
		g.Start(pos, -2)
		expectEqual(t, g.Value(pos), before)
	}
	// retriggering after a ramp finished starts from the old target
	g.Start(msToPos(1000), 5)
	expectEqual(t, g.Value(msToPos(1000)), -2.0)
	expectNearlyEqual(t, g.Value(msToPos(1050)), 1.5)
}

func TestGlideLengthChangeKeepsAnchor(t *testing.T) {
	g := NewGlide(100)
	g.Start(0, 1)
	g.SetLength(200)
	expectNearlyEqual(t, g.Value(msToPos(100)), 0.5)
	expectEqual(t, g.Length(), 200.0)
	expectEqual(t, g.Target(), 1.0)
}

func TestGlideBeforeAnchor(t *testing.T) {
	g := NewGlide(100)
	g.Start(500, 1)
	expectEqual(t, g.Value(100), 0.0)
}

func TestGlideSettle(t *testing.T) {
	g := NewGlide(100)
	g.Start(msToPos(1000), 1)
	g.Settle()
	expectEqual(t, g.Value(0), 1.0)
	g.Start(0, 0)
	expectEqual(t, g.Value(0), 1.0)
	expectNearlyEqual(t, g.Value(msToPos(50)), 0.5)
}
