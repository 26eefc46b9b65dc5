package billing

import "strings"

// DepreciationPolicy decides whether part depreciation raises or lowers the line price
type DepreciationPolicy string

const (
	// DepreciationSurcharge adds depreciation to the part price, as workshop invoices show it
	DepreciationSurcharge DepreciationPolicy = "surcharge"
	// DepreciationDeduct subtracts depreciation from the part price
	DepreciationDeduct DepreciationPolicy = "deduct"
)

// ParsePolicy maps a configured mode to a policy, defaulting to surcharge
func ParsePolicy(mode string) DepreciationPolicy {
	if strings.EqualFold(strings.TrimSpace(mode), string(DepreciationDeduct)) {
		return DepreciationDeduct
	}
	return DepreciationSurcharge
}

func (p DepreciationPolicy) String() string {
	return string(p)
}
