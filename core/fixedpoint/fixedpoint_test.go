package fixedpoint

import "testing"

func TestF64AddSubMulDiv(t *testing.T) {
	a := NewF64FromUint64(3)
	b := NewF64FromUint64(4)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.Cmp(NewF64FromUint64(7)) != 0 {
		t.Fatalf("unexpected sum")
	}

	diff, err := b.Sub(a)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if diff.Cmp(NewF64FromUint64(1)) != 0 {
		t.Fatalf("unexpected diff")
	}

	if _, err := a.Sub(b); err != ErrMathOverflow {
		t.Fatalf("expected underflow error, got %v", err)
	}

	prod, err := a.Mul(b)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if prod.Cmp(NewF64FromUint64(12)) != 0 {
		t.Fatalf("unexpected product")
	}

	quot, err := b.Div(a)
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	half, err := NewF64FromUint64(1).Div(NewF64FromUint64(3))
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	expect, err := NewF64FromUint64(1).Add(half)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// 4/3 ~= 1.333...; check within one unit of least precision.
	diffCheck, err := quot.Sub(expect)
	if err != nil {
		diffCheck, err = expect.Sub(quot)
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
	}
	if diffCheck.Cmp(NewF64FromUint64(1)) >= 0 {
		t.Fatalf("division result too far off: %v vs %v", quot, expect)
	}

	if _, err := a.Div(Zero64); err != ErrDivisionByZero {
		t.Fatalf("expected division by zero error, got %v", err)
	}
}

func TestF64Sqrt(t *testing.T) {
	sixteen := NewF64FromUint64(16)
	root, err := sixteen.Sqrt()
	if err != nil {
		t.Fatalf("sqrt: %v", err)
	}
	if root.Cmp(NewF64FromUint64(4)) != 0 {
		t.Fatalf("expected sqrt(16)=4, got raw=%s", root.Raw())
	}
}

func TestSignedArithmetic(t *testing.T) {
	a := SignedFromInt64(-5)
	b := SignedFromInt64(3)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.Cmp(SignedFromInt64(-2)) != 0 {
		t.Fatalf("unexpected signed sum")
	}

	prod, err := a.Mul(b)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if prod.Cmp(SignedFromInt64(-15)) != 0 {
		t.Fatalf("unexpected signed product")
	}
}

func TestExpZeroIsOne(t *testing.T) {
	result, err := Exp(Signed{})
	if err != nil {
		t.Fatalf("exp: %v", err)
	}
	if result.Cmp(One64) != 0 {
		t.Fatalf("expected exp(0)=1, got raw=%s", result.Raw())
	}
}

func TestExpDomainRejected(t *testing.T) {
	tooLarge := SignedFromInt64(31)
	if _, err := Exp(tooLarge); err != ErrDomain {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestLnOfOneIsZero(t *testing.T) {
	result, err := Ln(One64)
	if err != nil {
		t.Fatalf("ln: %v", err)
	}
	if !result.Mag.IsZero() {
		t.Fatalf("expected ln(1)=0, got %+v", result)
	}
}

func TestLnDomainRejectsZero(t *testing.T) {
	if _, err := Ln(Zero64); err != ErrDomain {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestFloat64RoundTrips(t *testing.T) {
	if got := NewF64FromUint64(3).Float64(); got != 3 {
		t.Fatalf("Float64: got %v want 3", got)
	}
	half, err := NewF64FromUint64(1).Div(NewF64FromUint64(2))
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	if got := half.Float64(); got != 0.5 {
		t.Fatalf("Float64: got %v want 0.5", got)
	}
}
