package filter

import (
	"time"

	"github.com/shaiso/Plankit/internal/fake"
)

var (
	fakeObjects = []string{
		"My parcel was lost",
		"Damaged package",
		"Payment question",
		"upgrade",
		"upgrade your NFT game",
		"Where is my invoice?",
	}
	fakeBodies = []string{
		"Tracking says delivered, nothing here",
		"Can I pay yearly?",
		"How do I upgrade my plan?",
		"Best NFT deals",
		"Please call me back",
	}
	fakeTiers = []Tier{TierDiscovery, TierSilver, TierGold}
)

// FakeRequest генерирует обращение от клиента случайного тарифа,
// созданное не раньше чем за 48 часов до now.
func FakeRequest(now time.Time) fake.Fake[SupportRequest] {
	fields := fake.Struct(map[string]fake.Fake[any]{
		"object": fake.Any(fake.OneOf(fakeObjects...)),
		"body":   fake.Any(fake.OneOf(fakeBodies...)),
		"tier":   fake.Any(fake.OneOf(fakeTiers...)),
		"age":    fake.Any(fake.IntWithinRange(0, 48*60)),
	})

	return fake.Map(fields, func(m map[string]any) SupportRequest {
		return SupportRequest{
			Object:      m["object"].(string),
			Body:        m["body"].(string),
			From:        string(m["tier"].(Tier)) + "-client-id",
			RequestedAt: now.Add(-time.Duration(m["age"].(int)) * time.Minute),
		}
	})
}
