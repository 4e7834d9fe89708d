package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(Vec3{10, 20, 30})
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(Vec3{10, 20, 30}).Mul(Scale(2, 2, 2))
	result := m.TransformDirection(Vec3{1, 0, 0})

	expected := Vec3{2, 0, 0}
	if result != expected {
		t.Errorf("TransformDirection: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(math.Pi / 2)
	result := m.TransformPoint(UnitX)

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !result.ApproxEqual(Vec3{0, 0, -1}, 1e-12) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestTRS(t *testing.T) {
	m := TRS(Vec3{1, 0, 0}, Vec3{0, 0, math.Pi / 2}, Vec3{2, 2, 2})
	result := m.TransformPoint(UnitX)

	// scale to (2,0,0), rotate to (0,2,0), translate to (1,2,0)
	if !result.ApproxEqual(Vec3{1, 2, 0}, 1e-12) {
		t.Errorf("TRS: got %v, want (1, 2, 0)", result)
	}
}

func TestDeterminant3x3(t *testing.T) {
	if d := Scale(2, 3, 4).Determinant3x3(); math.Abs(d-24) > 1e-12 {
		t.Errorf("Determinant3x3 of scale: got %v, want 24", d)
	}
	if d := Scale(-1, 1, 1).Determinant3x3(); d >= 0 {
		t.Errorf("mirror should have negative determinant, got %v", d)
	}
}
