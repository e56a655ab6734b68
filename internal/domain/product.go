package domain

// ProductEffect describes what purchasing a product grants.
// Exactly one of (Tier, Months) or Sessions is set.
type ProductEffect struct {
	Tier     Tier `mapstructure:"tier" json:"tier,omitempty"`
	Months   int  `mapstructure:"months" json:"months,omitempty"`
	Sessions int  `mapstructure:"sessions" json:"sessions,omitempty"`
}

// IsSubscription reports whether the product grants a subscription period.
func (p ProductEffect) IsSubscription() bool {
	return p.Tier != "" && p.Months > 0
}

// IsSessionPack reports whether the product grants PT session credits.
func (p ProductEffect) IsSessionPack() bool {
	return p.Sessions > 0
}

// ProductCatalog maps payment-provider product ids to their effect.
type ProductCatalog map[string]ProductEffect

// DefaultProductCatalog is used when the configuration does not provide one.
func DefaultProductCatalog() ProductCatalog {
	return ProductCatalog{
		"prod_standard_monthly":      {Tier: TierStandard, Months: 1},
		"prod_standard_plus_monthly": {Tier: TierStandardPlus, Months: 1},
		"prod_premium_monthly":       {Tier: TierPremium, Months: 1},
		"prod_premium_quarterly":     {Tier: TierPremium, Months: 3},
		"prod_premium_yearly":        {Tier: TierPremium, Months: 12},
		"prod_pt_single":             {Sessions: 1},
		"prod_pt_pack_4":             {Sessions: 4},
		"prod_pt_pack_8":             {Sessions: 8},
	}
}
