package flight

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

type fakeBody struct {
	position mgl64.Vec3
	rotation physics.Rotator
	velocity mgl64.Vec3
	active   bool
}

func (b *fakeBody) GetPosition() mgl64.Vec3 { return b.position }
func (b *fakeBody) SetPosition(p mgl64.Vec3) { b.position = p }
func (b *fakeBody) GetRotation() physics.Rotator { return b.rotation }
func (b *fakeBody) SetRotation(r physics.Rotator) { b.rotation = r }
func (b *fakeBody) SpeedSquared() float64 { return physics.LengthSquared(b.velocity) }
func (b *fakeBody) StopMovement() { b.velocity = mgl64.Vec3{} }
func (b *fakeBody) SetMovementActive(active bool) { b.active = active }

type sphereProber struct {
	surface  physics.Sphere
	lastFrom mgl64.Vec3
	lastTo   mgl64.Vec3
	calls    int
}

func (p *sphereProber) Probe(start, end mgl64.Vec3) (physics.HitResult, bool) {
	p.calls++
	p.lastFrom, p.lastTo = start, end
	return physics.SegmentSphere(start, end, p.surface)
}

func newPlanetProber() *sphereProber {
	return &sphereProber{surface: physics.Sphere{Radius: 1000}}
}

func TestLanding_CheckForLanding(t *testing.T) {
	tests := []struct {
		name       string
		position   mgl64.Vec3
		velocity   mgl64.Vec3
		wantLanded bool
	}{
		{"slow and in range", mgl64.Vec3{0, 0, 1300}, mgl64.Vec3{50, 0, 0}, true},
		{"at rest", mgl64.Vec3{0, 0, 1100}, mgl64.Vec3{}, true},
		{"too fast", mgl64.Vec3{0, 0, 1300}, mgl64.Vec3{0, 0, -150}, false},
		{"exactly landing speed", mgl64.Vec3{0, 0, 1300}, mgl64.Vec3{0, 100, 0}, false},
		{"just under landing speed", mgl64.Vec3{0, 0, 1300}, mgl64.Vec3{0, 99.99, 0}, true},
		{"surface exactly at probe range", mgl64.Vec3{0, 0, 1500}, mgl64.Vec3{}, true},
		{"surface beyond probe range", mgl64.Vec3{0, 0, 1500.5}, mgl64.Vec3{}, false},
		{"probe miss", mgl64.Vec3{5000, 0, 0}, mgl64.Vec3{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &fakeBody{position: tt.position, velocity: tt.velocity, active: true}
			l := NewLanding(DefaultLandingParams())

			got := l.CheckForLanding(body, newPlanetProber())
			if got != tt.wantLanded {
				t.Fatalf("CheckForLanding() = %v, want %v", got, tt.wantLanded)
			}

			wantState := Flying
			if tt.wantLanded {
				wantState = Landed
			}
			if l.State() != wantState {
				t.Errorf("State() = %v, want %v", l.State(), wantState)
			}
			if !tt.wantLanded && body.position != tt.position {
				t.Errorf("position changed while flying: %v", body.position)
			}
		})
	}
}

func TestLanding_LandSnapsToSurface(t *testing.T) {
	tests := []struct {
		name     string
		position mgl64.Vec3
		rotation physics.Rotator
		wantPos  mgl64.Vec3
		wantUp   mgl64.Vec3
	}{
		{
			name:     "north pole",
			position: mgl64.Vec3{0, 0, 1300},
			wantPos:  mgl64.Vec3{0, 0, 1100},
			wantUp:   mgl64.Vec3{0, 0, 1},
		},
		{
			name:     "side of the planet",
			position: mgl64.Vec3{0, 1300, 0},
			rotation: physics.RotatorFromZ(mgl64.Vec3{0, 1, 0}),
			wantPos:  mgl64.Vec3{0, 1100, 0},
			wantUp:   mgl64.Vec3{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &fakeBody{position: tt.position, rotation: tt.rotation, velocity: mgl64.Vec3{10, 0, 0}, active: true}
			l := NewLanding(DefaultLandingParams())

			if !l.CheckForLanding(body, newPlanetProber()) {
				t.Fatal("expected landing")
			}
			if body.velocity != (mgl64.Vec3{}) {
				t.Errorf("velocity = %v, want zero", body.velocity)
			}
			if body.active {
				t.Error("movement still active after landing")
			}
			if !physics.VecNearlyEqual(body.position, tt.wantPos, 1e-6) {
				t.Errorf("position = %v, want %v", body.position, tt.wantPos)
			}
			if got := body.rotation.Up(); !physics.VecNearlyEqual(got, tt.wantUp, 1e-6) {
				t.Errorf("up axis = %v, want %v", got, tt.wantUp)
			}
		})
	}
}

func TestLanding_ProbeFollowsLocalDown(t *testing.T) {
	rot := physics.Rotator{Pitch: 30, Roll: 45}
	body := &fakeBody{position: mgl64.Vec3{100, 200, 300}, rotation: rot}
	prober := &sphereProber{surface: physics.Sphere{Center: mgl64.Vec3{1e6, 0, 0}, Radius: 1}}
	l := NewLanding(DefaultLandingParams())

	l.CheckForLanding(body, prober)

	want := body.position.Sub(rot.Up().Mul(500))
	if prober.lastFrom != body.position || !physics.VecNearlyEqual(prober.lastTo, want, 1e-9) {
		t.Errorf("probe = %v -> %v, want %v -> %v", prober.lastFrom, prober.lastTo, body.position, want)
	}
}

func TestLanding_LandedIgnoresFurtherChecks(t *testing.T) {
	body := &fakeBody{position: mgl64.Vec3{0, 0, 1200}, active: true}
	prober := newPlanetProber()
	l := NewLanding(DefaultLandingParams())

	l.CheckForLanding(body, prober)
	calls := prober.calls

	if l.CheckForLanding(body, prober) {
		t.Error("CheckForLanding() reported a second landing")
	}
	if prober.calls != calls {
		t.Error("probe cast while landed")
	}
}

func TestLanding_TakeOff(t *testing.T) {
	body := &fakeBody{position: mgl64.Vec3{0, 0, 1200}, active: true}
	l := NewLanding(DefaultLandingParams())

	if l.TakeOff(body) {
		t.Fatal("TakeOff() while flying reported a transition")
	}
	if body.position != (mgl64.Vec3{0, 0, 1200}) {
		t.Fatalf("TakeOff() while flying moved the body to %v", body.position)
	}

	l.CheckForLanding(body, newPlanetProber())
	landedAt := body.position

	if !l.TakeOff(body) {
		t.Fatal("TakeOff() from landed reported no transition")
	}
	if l.State() != Flying {
		t.Errorf("State() = %v, want flying", l.State())
	}
	if !body.active {
		t.Error("movement not reactivated")
	}
	if want := landedAt.Add(mgl64.Vec3{0, 0, 100}); !physics.VecNearlyEqual(body.position, want, 1e-9) {
		t.Errorf("position = %v, want %v", body.position, want)
	}
}

func TestLanding_NilProber(t *testing.T) {
	body := &fakeBody{position: mgl64.Vec3{0, 0, 1100}}
	l := NewLanding(DefaultLandingParams())

	if l.CheckForLanding(body, nil) {
		t.Error("CheckForLanding(nil) should not land")
	}
}

func TestState_String(t *testing.T) {
	if Flying.String() != "flying" || Landed.String() != "landed" {
		t.Errorf("got %q and %q", Flying.String(), Landed.String())
	}
	if State(7).String() != "unknown" {
		t.Errorf("State(7).String() = %q", State(7).String())
	}
}
