package config

// DefaultIgnoredDomains returns a curated list of domains whose activity
// should never feed the burnout metrics. These are sensitive services where
// recording interaction patterns, even in aggregate, is not worth the risk.
func DefaultIgnoredDomains() []string {
	return []string{
		// Banking & Financial
		"chase.com",
		"bankofamerica.com",
		"wellsfargo.com",
		"schwab.com",
		"fidelity.com",
		"vanguard.com",
		"paypal.com",
		"venmo.com",

		// Password Managers
		"1password.com",
		"bitwarden.com",
		"lastpass.com",

		// Auth Providers
		"accounts.google.com",
		"login.microsoftonline.com",
		"okta.com",

		// Healthcare
		"mychart.com",

		// Tax / Government
		"irs.gov",
	}
}
