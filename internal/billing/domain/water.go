package domain

import "strings"

// WaterConfigFixed selects flat-fee water billing on a contract.
// Any other configuration value, including an empty one, bills by usage.
const WaterConfigFixed = "fixed"

// ResolveWaterCost picks between fixed and metered water pricing.
// Fixed-price contracts without an explicit price bill the default
// fixed amount. Metered reports whether the usage figure is billable.
func ResolveWaterCost(configType string, fixedPrice *float64, usage float64, rates RateTable) (cost float64, metered bool) {
	if strings.EqualFold(strings.TrimSpace(configType), WaterConfigFixed) {
		if fixedPrice != nil {
			return *fixedPrice, false
		}
		return rates.DefaultFixedWater, false
	}
	return UsageCost(usage, rates.WaterPerUnit), true
}
