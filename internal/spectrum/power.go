package spectrum

import "math"

// Divisions is the number of vertical divisions spanned by the encoded range 0..255.
const Divisions = 10

// ToMilliwatt converts dBm to mW.
func ToMilliwatt(dbm float64) float64 {
	return math.Pow(10, dbm/10)
}

// ToDbm converts mW to dBm. The argument must be positive.
func ToDbm(mw float64) float64 {
	return 10 * math.Log10(mw)
}

// DecodePower converts an encoded power byte to dBm.
//
//	Reference Level -->  +------------------------------+    <-- encoded 0
//	                     |                              |
//	               ^ --  +------------------------------+
//	         scale  |    |                              |
//	               V --  +------------------------------+
//	                     :                              :
//	                     +------------------------------+    <-- encoded 255
func DecodePower(encoded byte, referenceLevel, scale float32) float64 {
	return float64(referenceLevel) - float64(scale)*Divisions*float64(encoded)/255
}
