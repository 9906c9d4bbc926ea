package models

// HPaToMmHgRatio converts hectopascals to millimeters of mercury. The value
// must stay exact: threshold comparisons downstream are bit-for-bit
// reproducible against fixture expectations.
const HPaToMmHgRatio = 0.750062

// ToMmHg converts a pressure in hectopascals to millimeters of mercury.
func ToMmHg(hpa float64) float64 {
	return hpa * HPaToMmHgRatio
}
