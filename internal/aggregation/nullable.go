package aggregation

import "math"

func ptr[T any](v T) *T {
	return &v
}

func roundInt(v *float64) *int {
	if v == nil {
		return nil
	}
	return ptr(int(math.Round(*v)))
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	return ptr(float64(*v))
}

// firstFloat returns the first non-nil value.
func firstFloat(vs ...*float64) *float64 {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(vs ...*int) *int {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// avgInt averages the non-nil values and rounds the result; nil when none are set.
func avgInt(vs []*int) *int {
	sum, n := 0, 0
	for _, v := range vs {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(int(math.Round(float64(sum) / float64(n))))
}

// sumFloat sums the non-nil values; nil when none are set.
func sumFloat(vs []*float64) *float64 {
	var (
		sum   float64
		found bool
	)
	for _, v := range vs {
		if v == nil {
			continue
		}
		sum += *v
		found = true
	}
	if !found {
		return nil
	}
	return &sum
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(math.Round(*v*10) / 10)
}
