package events

import (
	"context"
	"strings"

	"github.com/kigopro/kigo/internal/model"
)

// Topics. All live under the "kigo." subject root.
const (
	TopicAll = "kigo.>"

	TopicTokenCreated  = "kigo.token.created"
	TopicTokenReissued = "kigo.token.reissued"
	TopicTokenDisputed = "kigo.token.disputed"

	TopicCampaignCreated = "kigo.campaign.created"
	TopicCampaignUpdated = "kigo.campaign.updated"

	TopicAdGroupCreated = "kigo.adgroup.created"
	TopicAdGroupUpdated = "kigo.adgroup.updated"

	TopicAdUpdated = "kigo.ad.updated"

	TopicAssistantCompleted = "kigo.assistant.completed"
)

// Topics lists every concrete topic.
var Topics = []string{
	TopicTokenCreated, TopicTokenReissued, TopicTokenDisputed,
	TopicCampaignCreated, TopicCampaignUpdated,
	TopicAdGroupCreated, TopicAdGroupUpdated,
	TopicAdUpdated,
	TopicAssistantCompleted,
}

// Match reports whether topic is matched by pattern, using NATS subject
// wildcards: "*" matches one token and a trailing ">" matches the rest.
func Match(pattern, topic string) bool {
	p := strings.Split(pattern, ".")
	s := strings.Split(topic, ".")
	for i, tok := range p {
		if tok == ">" {
			return i < len(s)
		}
		if i >= len(s) || (tok != "*" && tok != s[i]) {
			return false
		}
	}
	return len(p) == len(s)
}

// Payloads

type TokenCreated struct {
	Token *model.Token `json:"token"`
}

type TokenReissued struct {
	Original    *model.Token `json:"original"`
	Replacement *model.Token `json:"replacement"`
}

type TokenDisputed struct {
	Token *model.Token `json:"token"`
}

type CampaignChanged struct {
	Campaign *model.Campaign `json:"campaign"`
	Changes  []string        `json:"changes,omitempty"` // field names
}

type AdGroupChanged struct {
	AdGroup *model.AdGroup `json:"ad_group"`
	Changes []string       `json:"changes,omitempty"`
}

type AdUpdated struct {
	Ad      *model.Ad `json:"ad"`
	Changes []string  `json:"changes,omitempty"`
}

type AssistantCompleted struct {
	SessionID string          `json:"session_id"`
	Campaign  *model.Campaign `json:"campaign"`
}

// Message is one delivery from a Subscriber.
type Message struct {
	Topic string
	Data  []byte
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
