package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/parallel"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// bstrides returns the strides of shape s when iterated over the union
// shape u, with a zero stride on every dimension s broadcasts along.
func bstrides(s, u tensor.Shape) [tensor.Rank]int {
	st := s.Strides()
	var out [tensor.Rank]int
	for i := 0; i < tensor.Rank; i++ {
		if s[i] == u[i] {
			out[i] = st[i]
		}
		// extent 1 against a larger union extent: stride stays 0
	}
	return out
}

// union computes the broadcast union of already-validated operand shapes.
// Shape compatibility is established at node construction, so a mismatch
// here is an internal invariant violation.
func union(shapes ...tensor.Shape) tensor.Shape {
	u := shapes[0]
	for _, s := range shapes[1:] {
		merged, err := tensor.Broadcast(u, s)
		if err != nil {
			panic(fmt.Sprintf("cpu: kernel shape mismatch: %v", err))
		}
		u = merged
	}
	return u
}

// element1 computes out = f(a) over the union of both shapes.
func element1(out, a *tensor.Tensor, f func(float32) float32) {
	u := union(out.Shape(), a.Shape())
	os, as := bstrides(out.Shape(), u), bstrides(a.Shape(), u)
	od, ad := out.Data(), a.Data()
	row := func(i0 int) {
		for i1 := 0; i1 < u[1]; i1++ {
			for i2 := 0; i2 < u[2]; i2++ {
				for i3 := 0; i3 < u[3]; i3++ {
					od[i0*os[0]+i1*os[1]+i2*os[2]+i3*os[3]] =
						f(ad[i0*as[0]+i1*as[1]+i2*as[2]+i3*as[3]])
				}
			}
		}
	}
	if os[0] == 0 {
		// out broadcasts along the leading dimension: rows collide.
		for i0 := 0; i0 < u[0]; i0++ {
			row(i0)
		}
		return
	}
	parallel.Rows(u[0], u[1]*u[2]*u[3], row)
}

// element2 computes out = f(a, b) over the union of all three shapes.
func element2(out, a, b *tensor.Tensor, f func(x, y float32) float32) {
	u := union(out.Shape(), a.Shape(), b.Shape())
	os, as, bs := bstrides(out.Shape(), u), bstrides(a.Shape(), u), bstrides(b.Shape(), u)
	od, ad, bd := out.Data(), a.Data(), b.Data()
	row := func(i0 int) {
		for i1 := 0; i1 < u[1]; i1++ {
			for i2 := 0; i2 < u[2]; i2++ {
				for i3 := 0; i3 < u[3]; i3++ {
					od[i0*os[0]+i1*os[1]+i2*os[2]+i3*os[3]] =
						f(ad[i0*as[0]+i1*as[1]+i2*as[2]+i3*as[3]],
							bd[i0*bs[0]+i1*bs[1]+i2*bs[2]+i3*bs[3]])
				}
			}
		}
	}
	if os[0] == 0 {
		for i0 := 0; i0 < u[0]; i0++ {
			row(i0)
		}
		return
	}
	parallel.Rows(u[0], u[1]*u[2]*u[3], row)
}

// accum1 accumulates out += f(a). When out is smaller than a this reduces
// over the broadcast dimensions; when larger, f(a) is broadcast up.
func accum1(out, a *tensor.Tensor, f func(float32) float32) {
	u := union(out.Shape(), a.Shape())
	os, as := bstrides(out.Shape(), u), bstrides(a.Shape(), u)
	od, ad := out.Data(), a.Data()
	for i0 := 0; i0 < u[0]; i0++ {
		for i1 := 0; i1 < u[1]; i1++ {
			for i2 := 0; i2 < u[2]; i2++ {
				for i3 := 0; i3 < u[3]; i3++ {
					od[i0*os[0]+i1*os[1]+i2*os[2]+i3*os[3]] +=
						f(ad[i0*as[0]+i1*as[1]+i2*as[2]+i3*as[3]])
				}
			}
		}
	}
}

// accum2 accumulates out += f(a, b).
func accum2(out, a, b *tensor.Tensor, f func(x, y float32) float32) {
	u := union(out.Shape(), a.Shape(), b.Shape())
	os, as, bs := bstrides(out.Shape(), u), bstrides(a.Shape(), u), bstrides(b.Shape(), u)
	od, ad, bd := out.Data(), a.Data(), b.Data()
	for i0 := 0; i0 < u[0]; i0++ {
		for i1 := 0; i1 < u[1]; i1++ {
			for i2 := 0; i2 < u[2]; i2++ {
				for i3 := 0; i3 < u[3]; i3++ {
					od[i0*os[0]+i1*os[1]+i2*os[2]+i3*os[3]] +=
						f(ad[i0*as[0]+i1*as[1]+i2*as[2]+i3*as[3]],
							bd[i0*bs[0]+i1*bs[1]+i2*bs[2]+i3*bs[3]])
				}
			}
		}
	}
}

// accum3 accumulates out += f(a, b, c).
func accum3(out, a, b, c *tensor.Tensor, f func(x, y, z float32) float32) {
	u := union(out.Shape(), a.Shape(), b.Shape(), c.Shape())
	os := bstrides(out.Shape(), u)
	as, bs, cs := bstrides(a.Shape(), u), bstrides(b.Shape(), u), bstrides(c.Shape(), u)
	od, ad, bd, cd := out.Data(), a.Data(), b.Data(), c.Data()
	for i0 := 0; i0 < u[0]; i0++ {
		for i1 := 0; i1 < u[1]; i1++ {
			for i2 := 0; i2 < u[2]; i2++ {
				for i3 := 0; i3 < u[3]; i3++ {
					od[i0*os[0]+i1*os[1]+i2*os[2]+i3*os[3]] +=
						f(ad[i0*as[0]+i1*as[1]+i2*as[2]+i3*as[3]],
							bd[i0*bs[0]+i1*bs[1]+i2*bs[2]+i3*bs[3]],
							cd[i0*cs[0]+i1*cs[1]+i2*cs[2]+i3*cs[3]])
				}
			}
		}
	}
}
