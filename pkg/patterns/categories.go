package patterns

// URL suspicion patterns. Patterns match against the full submitted URL,
// lowercased or not - each regex is written case-insensitively where the
// signal is case-insensitive.

func (r *Registry) registerStructurePatterns() {
	r.register("ip_literal_host",
		`(?i)^(?:https?://)?\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(?:[:/]|$)`,
		CategoryStructure,
		"hostname is a raw IP address")

	r.register("userinfo_disguise",
		`(?i)^(?:https?://)?[^/]*@`,
		CategoryStructure,
		"URL embeds userinfo before the real hostname")

	r.register("excessive_subdomains",
		`(?i)^(?:https?://)?(?:[a-z0-9-]+\.){4,}[a-z0-9-]+`,
		CategoryStructure,
		"hostname has four or more subdomain levels")

	r.register("punycode_label",
		`(?i)(?:^|\.|/)xn--`,
		CategoryStructure,
		"hostname contains an internationalized (punycode) label")

	r.register("long_hostname",
		`(?i)^(?:https?://)?[^/]{50,}`,
		CategoryStructure,
		"hostname is unusually long")
}

func (r *Registry) registerBaitPatterns() {
	r.register("credential_bait",
		`(?i)^(?:https?://)?[^/]*(?:login|signin|sign-in|verify|account|secure|password|update|confirm)[^/]*(?:[/:]|$)`,
		CategoryBait,
		"hostname carries credential-bait vocabulary")

	r.register("brand_plus_hyphens",
		`(?i)^(?:https?://)?[^/]*(?:paypal|apple|google|amazon|microsoft|netflix|bank)[a-z0-9]*-`,
		CategoryBait,
		"brand name joined to extra hyphenated tokens")

	r.register("support_bait",
		`(?i)^(?:https?://)?[^/]*(?:support|helpdesk|recovery|unlock)[^/]*(?:[/:]|$)`,
		CategoryBait,
		"hostname imitates a support or recovery portal")
}

func (r *Registry) registerInfraPatterns() {
	r.register("throwaway_tld",
		`(?i)^(?:https?://)?[^/]+\.(?:zip|top|xyz|country|icu|loan|tk|gq|ml|cf)(?:[:/]|$)`,
		CategoryInfra,
		"top-level domain is popular with throwaway campaigns")

	r.register("url_shortener",
		`(?i)^(?:https?://)?(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|is\.gd|cutt\.ly|rb\.gy)(?:[:/]|$)`,
		CategoryInfra,
		"URL goes through a link shortener")

	r.register("free_hosting",
		`(?i)\.(?:000webhostapp\.com|weebly\.com|wixsite\.com|blogspot\.com|github\.io|netlify\.app|web\.app|repl\.co)(?:[:/]|$)`,
		CategoryInfra,
		"hosted on a free-tier platform subdomain")

	r.register("digit_run_host",
		`(?i)^(?:https?://)?[^/]*\d{5,}`,
		CategoryInfra,
		"hostname contains a long digit run")
}
