package intelligence

import (
	"strings"

	"github.com/shubh-37/prosora/internal/models"
)

// domainKeywords is checked in order; the first domain with any match wins.
var domainKeywords = []struct {
	domain   models.Domain
	keywords []string
}{
	{models.DomainFintech, []string{"payment", "banking", "finance", "money", "transaction", "credit", "loan"}},
	{models.DomainHealthcare, []string{"health", "medical", "patient", "doctor", "treatment", "diagnosis"}},
	{models.DomainEcommerce, []string{"shopping", "retail", "marketplace", "seller", "buyer", "product catalog"}},
	{models.DomainEducation, []string{"learning", "student", "teacher", "course", "education", "training"}},
	{models.DomainTransportation, []string{"transport", "mobility", "vehicle", "travel", "logistics", "delivery"}},
}

// Classify maps free text to a domain tag by case-insensitive keyword matching.
// Text that matches nothing is DomainGeneral.
func Classify(text string) models.Domain {
	lower := strings.ToLower(text)

	for _, entry := range domainKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.domain
			}
		}
	}

	return models.DomainGeneral
}
