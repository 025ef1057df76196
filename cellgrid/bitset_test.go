package cellgrid

import (
	"testing"

	"go.viam.com/test"
)

func TestBitSetSetClearTest(t *testing.T) {
	b := NewBitSet(130) // spans more than two 64-bit words
	test.That(t, b.Test(5), test.ShouldBeFalse)

	b.Set(5)
	b.Set(64)
	b.Set(129)
	test.That(t, b.Test(5), test.ShouldBeTrue)
	test.That(t, b.Test(64), test.ShouldBeTrue)
	test.That(t, b.Test(129), test.ShouldBeTrue)
	test.That(t, b.Count(), test.ShouldEqual, 3)

	b.Clear(64)
	test.That(t, b.Test(64), test.ShouldBeFalse)
	test.That(t, b.Count(), test.ShouldEqual, 2)
}

func TestBitSetClone(t *testing.T) {
	b := NewBitSet(10)
	b.Set(3)
	c := b.Clone()
	c.Set(4)

	test.That(t, b.Test(4), test.ShouldBeFalse)
	test.That(t, c.Test(3), test.ShouldBeTrue)
	test.That(t, c.Test(4), test.ShouldBeTrue)
}

func TestBitSetAndNotInPlace(t *testing.T) {
	a := NewBitSet(8)
	a.Set(1)
	a.Set(2)
	a.Set(3)

	b := NewBitSet(8)
	b.Set(2)

	a.AndNotInPlace(b)
	test.That(t, a.Test(1), test.ShouldBeTrue)
	test.That(t, a.Test(2), test.ShouldBeFalse)
	test.That(t, a.Test(3), test.ShouldBeTrue)
}

func TestBitSetEachVisitsAscending(t *testing.T) {
	b := NewBitSet(200)
	want := []int{0, 1, 63, 64, 65, 128, 199}
	for _, i := range want {
		b.Set(i)
	}

	var got []int
	b.Each(func(i int) { got = append(got, i) })

	test.That(t, got, test.ShouldResemble, want)
}

func TestBitSetClearAll(t *testing.T) {
	b := NewBitSet(8)
	b.Set(1)
	b.Set(6)
	b.ClearAll()
	test.That(t, b.Count(), test.ShouldEqual, 0)
}
