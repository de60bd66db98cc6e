package math

import "testing"

func TestVectorElements(t *testing.T) {
	got := NewVec4(1, 2, 3, 4).Elements()
	if len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Errorf("Vec4 Elements = %v", got)
	}
	if e := NewVec3(1, 2, 3).Elements(); len(e) != 3 || e[2] != 3 {
		t.Errorf("Vec3 Elements = %v", e)
	}
	if e := (Vec2{X: 5, Y: 6}).Elements(); len(e) != 2 || e[1] != 6 {
		t.Errorf("Vec2 Elements = %v", e)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 1}, {1, 1}, {3, 3}, {4, 4}, {9, 4},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, 1, 4); got != tt.want {
			t.Errorf("Clamp(%d, 1, 4) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := Clamp(float32(-0.5), 0, 1); got != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v", got)
	}
}

func TestNewRandIsDeterministic(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 16; i++ {
		if x, y := a.Uint32(), b.Uint32(); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
