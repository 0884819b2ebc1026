package assistant

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"I want to create a new campaign", IntentAdCreation},
		{"  I'd like to BUILD an Ad ", IntentAdCreation},
		{"wanna make something", IntentAdCreation},
		{"we need to build one for summer", IntentAdCreation},
		{"how can we improve ROI?", IntentCampaignOptimization},
		{"performance looks weak", IntentCampaignOptimization},
		{"set up a filter for vitamins", IntentFilterManagement},
		{"what criteria can I use", IntentFilterManagement},
		{"show me the dashboard", IntentAnalyticsQuery},
		{"any stats from last week", IntentAnalyticsQuery},
		{"I need some help", IntentMerchantSupport},
		{"how to pause things", IntentMerchantSupport},
		{"hello there", IntentGeneral},
		{"", IntentGeneral},
		// Word boundaries: "adapt" is not "ad", "filters" is not "filter".
		{"create an adapter", IntentGeneral},
		{"more filters", IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.message, got, tt.want)
			}
		})
	}
}
