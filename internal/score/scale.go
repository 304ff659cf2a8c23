package score

// ScaleValues maps values linearly from their observed range into
// [nmin, nmax]. The range is taken over known values. Unknown and zero
// values map to 0. When every known value is equal the non-zero ones get
// the midpoint of the output range.
func ScaleValues(values []Value, nmin, nmax float64) []float64 {
	out := make([]float64, len(values))

	var omin, omax float64
	known := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !known {
			omin, omax = *v, *v
			known = true
			continue
		}
		omin = min(omin, *v)
		omax = max(omax, *v)
	}
	if !known {
		return out
	}

	for i, v := range values {
		switch {
		case v == nil || *v == 0:
			out[i] = 0
		case omax == omin:
			out[i] = (nmin + nmax) / 2
		default:
			out[i] = nmin + (nmax-nmin)*(*v-omin)/(omax-omin)
		}
	}
	return out
}
