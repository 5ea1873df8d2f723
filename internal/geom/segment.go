package geom

// parallelEps rejects near-zero intersection denominators. Segments that
// close to parallel report no intersection rather than a huge parameter.
const parallelEps = 1e-9

// SegmentIntersect solves the parametric intersection of segments AB and
// CD in screen space. r is the position along AB, s along CD, both in
// [0,1] when ok. Parallel or degenerate pairs report ok=false.
func SegmentIntersect(a, b, c, d Vec2) (r, s float64, ok bool) {
	ab := b.Sub(a)
	cd := d.Sub(c)

	denom := ab.Cross(cd)
	if denom < parallelEps && denom > -parallelEps {
		return 0, 0, false
	}

	ac := a.Sub(c)
	r = cd.Cross(ac) / denom
	s = ab.Cross(ac) / denom

	if r < 0 || r > 1 || s < 0 || s > 1 {
		return 0, 0, false
	}
	return r, s, true
}

// ClosestPointParam returns the parameter t in [0,1] of the point on
// segment AB closest to p.
func ClosestPointParam(a, b, p Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-12 {
		return 0
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ClosestPointOnSegment returns the point on segment AB closest to p.
func ClosestPointOnSegment(a, b, p Vec3) Vec3 {
	return Lerp(a, b, ClosestPointParam(a, b, p))
}
