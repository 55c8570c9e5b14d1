package domain

// VATCode names a Swiss VAT rate class.
type VATCode string

const (
	VATStandard VATCode = "Standard"
	VATReduced  VATCode = "Reduced"
	VATSpecial  VATCode = "Special"
	VATZero     VATCode = "Zero"
)

var vatRates = map[VATCode]float64{
	VATStandard: 7.7,
	VATReduced:  2.5,
	VATSpecial:  3.7,
	VATZero:     0,
}

// Rate returns the percentage for the code. Unknown codes map to the standard rate.
func (c VATCode) Rate() float64 {
	if r, ok := vatRates[c]; ok {
		return r
	}
	return vatRates[VATStandard]
}

// Valid reports whether c is one of the known rate classes.
func (c VATCode) Valid() bool {
	_, ok := vatRates[c]
	return ok
}
