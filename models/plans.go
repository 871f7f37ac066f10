package models

// PlanDetails describes a paid tier as presented at checkout.
type PlanDetails struct {
	Name     string
	Price    int64 // cents
	Currency string
	Interval string
	Features []string
}

// PaidPlans is the catalog of purchasable tiers. The free tier is implicit
// and never appears in a checkout session.
var PaidPlans = map[Plan]PlanDetails{
	PlanPro: {
		Name:     "Pro",
		Price:    1900,
		Currency: "usd",
		Interval: "month",
		Features: []string{
			"Unlimited messages",
			"Advanced AI model (GPT-4)",
			"Priority response time",
			"Email support",
			"Custom instructions",
			"Chat history export",
			"API access",
		},
	},
	PlanTeam: {
		Name:     "Team",
		Price:    4900,
		Currency: "usd",
		Interval: "month",
		Features: []string{
			"Everything in Pro",
			"Up to 10 team members",
			"Shared chat workspaces",
			"Admin dashboard",
			"Priority support",
			"Custom AI training",
			"Advanced analytics",
			"SSO integration",
		},
	},
}
