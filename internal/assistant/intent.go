package assistant

import (
	"regexp"

	"github.com/kigopro/kigo/internal/listing"
)

// Intent labels what a chat message asks for. Classification never moves
// the machine by itself; it only shapes the options offered next.
type Intent string

const (
	IntentAdCreation           Intent = "ad_creation"
	IntentCampaignOptimization Intent = "campaign_optimization"
	IntentFilterManagement     Intent = "filter_management"
	IntentAnalyticsQuery       Intent = "analytics_query"
	IntentMerchantSupport      Intent = "merchant_support"
	IntentGeneral              Intent = "general_assistance"
)

// intentRules are checked in order; the first match wins.
var intentRules = []struct {
	intent   Intent
	patterns []*regexp.Regexp
}{
	{IntentAdCreation, []*regexp.Regexp{
		regexp.MustCompile(`\b(create|make|build|start|new|want|need|like).{0,20}\b(ad|advertisement|campaign)\b`),
		regexp.MustCompile(`\bwanna\s+(create|make|build)\b`),
		regexp.MustCompile(`\b(i'd like|would like|want to|need to).{0,20}\b(create|make|build)\b`),
	}},
	{IntentCampaignOptimization, []*regexp.Regexp{
		regexp.MustCompile(`\b(optimize|improve|enhance|better|performance|roi)\b`),
	}},
	{IntentFilterManagement, []*regexp.Regexp{
		regexp.MustCompile(`\b(filter|target|criteria|product selection)\b`),
	}},
	{IntentAnalyticsQuery, []*regexp.Regexp{
		regexp.MustCompile(`\b(analytics|stats|metrics|data|reports|dashboard)\b`),
	}},
	{IntentMerchantSupport, []*regexp.Regexp{
		regexp.MustCompile(`\b(help|support|guidance|how to|assistance)\b`),
	}},
}

// Classify labels a message by keyword rules.
func Classify(message string) Intent {
	msg := listing.NormalizeQuery(message)
	for _, rule := range intentRules {
		for _, re := range rule.patterns {
			if re.MatchString(msg) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
