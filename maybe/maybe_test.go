package maybe_test

import (
	"testing"

	. "github.com/Syrcon/servo/maybe"
)

func TestMaybeSimple(t *testing.T) {
	x := Just(uint64(7)) // infers type
	y := Nothing[uint64]()
	//
	var v uint64
	switch m := x.Match(); m {
	case m.Just(&v):
		t.Logf("Just(%d)", v)
	case m.Nothing():
		t.Logf("Nothing")
	}
	if v != 7 {
		t.Errorf("expected v to be 7, is %#v", v)
	}
	var w uint64
	switch m := y.Match(); m {
	case m.Just(&w):
		t.Errorf("expected Nothing to not match Just, did match")
	case m.Nothing():
		t.Logf("Nothing")
	}
	if w != 0 {
		t.Errorf("expected w to be 0, is %#v", w)
	}
}

func TestMaybeGet(t *testing.T) {
	if v, ok := Just("body").Get(); !ok || v != "body" {
		t.Errorf("expected Just(body) to yield body, is %q/%v", v, ok)
	}
	if _, ok := Nothing[string]().Get(); ok {
		t.Error("expected Nothing to yield no value")
	}
	if !Of(0, false).IsNothing() {
		t.Error("expected Of(_, false) to be Nothing")
	}
	if Of(3, true).WithDefault(100) != 3 {
		t.Error("expected Of(3, true) to carry 3")
	}
}

func TestMaybeWithDefault(t *testing.T) {
	x := Just(7)
	if xx := x.WithDefault(100); xx != 7 {
		t.Errorf("expected Just(7) to have value 7, is %d", xx)
	}
	y := Nothing[int]()
	if yy := y.WithDefault(100); yy != 100 {
		t.Errorf("expected Nothing to default to 100, is %d", yy)
	}
}

func TestMaybeMap(t *testing.T) {
	double := func(n int) int { return n * 2 }
	if v, _ := Map(double, Just(10)).Get(); v != 20 {
		t.Errorf("expected Map(…, Just 10) to return 20, is %d", v)
	}
	if !Nothing[int]().Map(double).IsNothing() {
		t.Error("expected Nothing.Map(…) to stay Nothing")
	}
}

func TestMaybeAndThen(t *testing.T) {
	gt0 := func(n int) Maybe[bool] {
		if n > 0 {
			return Just(true)
		}
		return Nothing[bool]()
	}
	if !AndThen(gt0, Just(-1)).IsNothing() {
		t.Error("expected Just(-1) |> andThen(gt0) to be Nothing, isn't")
	}
	var isGreater bool
	switch m := AndThen(gt0, Just(7)).Match(); m {
	case m.Just(&isGreater):
		t.Logf("ok: 7 > 0")
	case m.Nothing():
		t.Error("expected Just(7) |> andThen(gt0) to be true, isn't")
	}
}

func TestMaybeString(t *testing.T) {
	if s := Just(3).(interface{ String() string }).String(); s != "Just(3)" {
		t.Errorf("expected Just(3), is %q", s)
	}
}
