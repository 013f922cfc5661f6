package rules

// Rule is a declarative detection rule. Rules without a regulation belong to the
// security baseline and are active regardless of the enabled regulations.
type Rule struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Pattern    string   `yaml:"pattern" mapstructure:"pattern"`
	Message    string   `yaml:"message" mapstructure:"message"`
	Severity   Severity `yaml:"severity" mapstructure:"severity"`
	Regulation string   `yaml:"regulation" mapstructure:"regulation"`
	Article    string   `yaml:"article" mapstructure:"article"`
	Category   string   `yaml:"category" mapstructure:"category"`
}

// IsBaseline reports whether the rule is regulation agnostic.
func (r Rule) IsBaseline() bool {
	return r.Regulation == ""
}

const (
	RegulationGDPR    = "GDPR"
	RegulationCCPA    = "CCPA"
	RegulationHIPAA   = "HIPAA"
	RegulationPCIDSS  = "PCI-DSS"
	RegulationSOX     = "SOX"
	RegulationEUAIAct = "EU AI Act"
)

// registry is the canonical rule table. Its order is the registration order used
// when reporting several violations for one line.
var registry = []Rule{
	// GDPR
	{
		Name:       "personal_data_collection",
		Pattern:    `\b(?:e-?mail|phone_number|phone|date_of_birth|dob|ssn|social_security|passport|national_id|home_address|first_name|last_name|full_name)\b`,
		Message:    "Personal data is collected or processed; confirm a lawful basis and data minimisation",
		Severity:   SeverityHigh,
		Regulation: RegulationGDPR,
		Article:    "Art. 5(1)(c)",
		Category:   "data_collection",
	},
	{
		Name:       "pii_logging",
		Pattern:    `\b(?:print|console\.log|log|logger\.\w+|logging\.\w+|fmt\.Print\w*)\s*\([^)\n]*\b(?:email|phone|ssn|address|birth)`,
		Message:    "Personal data is written to logs or standard output",
		Severity:   SeverityHigh,
		Regulation: RegulationGDPR,
		Article:    "Art. 32",
		Category:   "logging",
	},
	{
		Name:       "tracking_without_consent",
		Pattern:    `\b(?:gtag|fbq|mixpanel\.track|analytics\.track|segment\.track|ga)\s*\(`,
		Message:    "Tracking call detected; ensure it only runs after user consent",
		Severity:   SeverityMedium,
		Regulation: RegulationGDPR,
		Article:    "Art. 7",
		Category:   "consent",
	},
	{
		Name:       "data_retention",
		Pattern:    `\b(?:keep_forever|store_forever|never_delete|retain_indefinitely|no_expiry)\b`,
		Message:    "Data is kept without a retention limit",
		Severity:   SeverityMedium,
		Regulation: RegulationGDPR,
		Article:    "Art. 5(1)(e)",
		Category:   "retention",
	},
	{
		Name:       "cross_border_transfer",
		Pattern:    `\b(?:us-(?:east|west)-\d|transfer_to_third_country|third_country_transfer)\b`,
		Message:    "Personal data may be transferred outside the EEA",
		Severity:   SeverityMedium,
		Regulation: RegulationGDPR,
		Article:    "Art. 44",
		Category:   "data_transfer",
	},
	// CCPA
	{
		Name:       "sale_of_personal_data",
		Pattern:    `\b(?:sell|share)_?(?:user|customer|personal)_?(?:data|info)\b`,
		Message:    "Personal information is sold or shared; an opt-out must be honoured",
		Severity:   SeverityHigh,
		Regulation: RegulationCCPA,
		Article:    "Cal. Civ. Code §1798.120",
		Category:   "data_sharing",
	},
	{
		Name:       "data_broker_sharing",
		Pattern:    `\b(?:data_broker|third_party_sharing|ad_network)\b`,
		Message:    "Data is shared with third parties; disclose it in the privacy notice",
		Severity:   SeverityMedium,
		Regulation: RegulationCCPA,
		Article:    "Cal. Civ. Code §1798.115",
		Category:   "data_sharing",
	},
	// HIPAA
	{
		Name:       "phi_exposure",
		Pattern:    `\b(?:patient_id|patient_name|medical_record|mrn|diagnosis|prescription|health_record|icd10)\b`,
		Message:    "Protected health information is handled; access must be restricted and audited",
		Severity:   SeverityCritical,
		Regulation: RegulationHIPAA,
		Article:    "45 CFR §164.502",
		Category:   "phi",
	},
	{
		Name:       "phi_unencrypted_transport",
		Pattern:    `http://[^\s'"]*(?:patient|health|medical|clinic)`,
		Message:    "Health data is sent over an unencrypted channel",
		Severity:   SeverityHigh,
		Regulation: RegulationHIPAA,
		Article:    "45 CFR §164.312(e)(1)",
		Category:   "encryption",
	},
	// PCI-DSS
	{
		Name:       "card_data_storage",
		Pattern:    `\b(?:card_number|credit_card|cc_number|cardholder|cvv|cvc|card_expiry)\b`,
		Message:    "Cardholder data is processed; stored PAN must be rendered unreadable",
		Severity:   SeverityCritical,
		Regulation: RegulationPCIDSS,
		Article:    "Req. 3.4",
		Category:   "cardholder_data",
	},
	{
		Name:       "card_number_literal",
		Pattern:    `\b(?:4\d{3}|5[1-5]\d{2})[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`,
		Message:    "A primary account number literal is present in the code",
		Severity:   SeverityCritical,
		Regulation: RegulationPCIDSS,
		Article:    "Req. 3.3",
		Category:   "cardholder_data",
	},
	// SOX
	{
		Name:       "audit_log_tampering",
		Pattern:    `\b(?:delete|truncate|drop|remove)\b[^\n]*\baudit_?(?:log|trail)s?\b`,
		Message:    "Audit records are deleted or truncated",
		Severity:   SeverityHigh,
		Regulation: RegulationSOX,
		Article:    "Section 404",
		Category:   "audit",
	},
	{
		Name:       "financial_record_update",
		Pattern:    `\bupdate\s+(?:ledger|journal_entries|general_ledger|financial_\w+)\b`,
		Message:    "Financial records are modified in place; changes must be traceable",
		Severity:   SeverityMedium,
		Regulation: RegulationSOX,
		Article:    "Section 302",
		Category:   "financial_reporting",
	},
	// EU AI Act
	{
		Name:       "automated_decision",
		Pattern:    `\b(?:auto_approve|auto_reject|automated_decision|credit_score|risk_score)\b`,
		Message:    "Automated decision without documented human oversight",
		Severity:   SeverityHigh,
		Regulation: RegulationEUAIAct,
		Article:    "Art. 14",
		Category:   "ai_governance",
	},
	{
		Name:       "biometric_processing",
		Pattern:    `\b(?:face_recognition|facial_recognition|biometric|fingerprint|emotion_recognition)\b`,
		Message:    "Biometric processing is a high-risk or prohibited AI practice",
		Severity:   SeverityCritical,
		Regulation: RegulationEUAIAct,
		Article:    "Art. 5",
		Category:   "ai_governance",
	},
	// security baseline
	{
		Name:     "hardcoded_secret",
		Pattern:  `\b(?:password|passwd|secret|api_key|apikey|access_token|private_key|secret_key)\b\s*[:=]\s*['"][^'"\n]{4,}['"]`,
		Message:  "Hardcoded credential; load it from the environment or a secret store",
		Severity: SeverityCritical,
		Category: "security",
	},
	{
		Name:     "sql_injection",
		Pattern:  `(?:select|insert|update|delete)\s[^'"\n]*['"]\s*(?:\+|%)|f['"](?:select|insert|update|delete)\s[^'"\n]*\{`,
		Message:  "SQL statement built from string concatenation or interpolation",
		Severity: SeverityHigh,
		Category: "security",
	},
	{
		Name:     "weak_crypto",
		Pattern:  `\b(?:md5|sha1|des|rc4)\s*\(|createHash\(\s*['"](?:md5|sha1)['"]`,
		Message:  "Weak cryptographic algorithm",
		Severity: SeverityHigh,
		Category: "security",
	},
	{
		Name:     "eval_usage",
		Pattern:  `\beval\s*\(`,
		Message:  "Dynamic code evaluation",
		Severity: SeverityHigh,
		Category: "security",
	},
	{
		Name:     "tls_verification_disabled",
		Pattern:  `verify\s*=\s*false|InsecureSkipVerify\s*:\s*true|rejectUnauthorized\s*:\s*false`,
		Message:  "TLS certificate verification is disabled",
		Severity: SeverityHigh,
		Category: "security",
	},
}

// Registry returns a copy of the built-in rule table in registration order.
func Registry() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

// Regulations returns the distinct regulations covered by the built-in rules, in table order.
func Regulations() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rule := range registry {
		if rule.IsBaseline() {
			continue
		}
		if _, ok := seen[rule.Regulation]; ok {
			continue
		}
		seen[rule.Regulation] = struct{}{}
		out = append(out, rule.Regulation)
	}
	return out
}
