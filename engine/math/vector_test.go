package math

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float32
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := Clamp(7, 0, 5); got != 5 {
		t.Errorf("Clamp on ints = %d, want 5", got)
	}
}

func TestVerticesExtents(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(-1, 0, 2)},
		{Position: NewVec3(3, -2, 0)},
		{Position: NewVec3(1, 4, 1)},
	}
	ext, center := VerticesExtents(vertices)
	if ext.Min != NewVec3(-1, -2, 0) {
		t.Errorf("min = %+v", ext.Min)
	}
	if ext.Max != NewVec3(3, 4, 2) {
		t.Errorf("max = %+v", ext.Max)
	}
	if center != NewVec3(1, 1, 1) {
		t.Errorf("center = %+v", center)
	}

	ext, center = VerticesExtents(nil)
	if ext != (Extents3D{}) || center != (Vec3{}) {
		t.Errorf("empty set should produce zero extents, got %+v %+v", ext, center)
	}
}
