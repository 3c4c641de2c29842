package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ThreatCategory is the classification a reporter picks when submitting an incident
type ThreatCategory string

const (
	ThreatCategoryPhishing           ThreatCategory = "Phishing"
	ThreatCategoryMalware            ThreatCategory = "Malware / Ransomware"
	ThreatCategoryHoneytrap          ThreatCategory = "Honeytrap / Social Engineering"
	ThreatCategoryEspionage          ThreatCategory = "Espionage Attempt"
	ThreatCategoryOPSEC              ThreatCategory = "OPSEC Risk"
	ThreatCategoryFraud              ThreatCategory = "Fraud / Financial Scam"
	ThreatCategoryUnauthorizedAccess ThreatCategory = "Unauthorized Access"
	ThreatCategoryOther              ThreatCategory = "Other Cyber Threat"
)

// AllThreatCategories returns the categories in the order the report form lists them
func AllThreatCategories() []ThreatCategory {
	return []ThreatCategory{
		ThreatCategoryPhishing,
		ThreatCategoryMalware,
		ThreatCategoryHoneytrap,
		ThreatCategoryEspionage,
		ThreatCategoryOPSEC,
		ThreatCategoryFraud,
		ThreatCategoryUnauthorizedAccess,
		ThreatCategoryOther,
	}
}

// IsValid checks if the category is one of the known threat categories
func (c ThreatCategory) IsValid() bool {
	for _, v := range AllThreatCategories() {
		if c == v {
			return true
		}
	}
	return false
}

// Validate returns an error if the category is unknown
func (c ThreatCategory) Validate() error {
	if c == "" {
		return goerr.New("threat category cannot be empty")
	}
	if !c.IsValid() {
		return goerr.New("unknown threat category", goerr.V("category", c))
	}
	return nil
}

// String returns the string representation of ThreatCategory
func (c ThreatCategory) String() string {
	return string(c)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
