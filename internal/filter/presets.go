package filter

import (
	"regexp"
	"time"
)

// SLAResponseTime — допустимое время ответа по SLA.
const SLAResponseTime = 20 * time.Hour

// UrgentAge — 75% от SLAResponseTime.
const UrgentAge = SLAResponseTime * 3 / 4

var (
	packageIssueRe = regexp.MustCompile(`(?i)lost|damaged`)
	paymentRe      = regexp.MustCompile(`(?i)payment`)
	upgradeRe      = regexp.MustCompile(`(?i)upgrade`)
	nftRe          = regexp.MustCompile(`(?i)nft`)
)

// PackageIssue — "lost" или "damaged" в теме или тексте.
var PackageIssue = Or(ObjectMatches(packageIssueRe), BodyMatches(packageIssueRe))

// UnderSLA — любой платный клиент, то есть не discovery.
// Новые платные тарифы попадают сюда автоматически.
var UnderSLA = Not(IsTier(TierDiscovery))

// Urgent — обращение gold клиента старше UrgentAge.
func Urgent(now func() time.Time) Filter {
	return And(IsTier(TierGold), Age(now, OpGreaterEqual, UrgentAge))
}

// Sales — "payment" от платного клиента или "upgrade" от discovery
// клиента, если это не спам (упоминание NFT).
var Sales = Or(
	And(matchesEither(paymentRe), UnderSLA),
	All(matchesEither(upgradeRe), IsTier(TierDiscovery), Not(matchesEither(nftRe))),
)

// matchesEither — совпадение в теме или тексте.
func matchesEither(re *regexp.Regexp) Filter {
	return Or(BodyMatches(re), ObjectMatches(re))
}

// Preset — именованное правило.
type Preset struct {
	Name   string
	Filter Filter
}

// Presets возвращает готовые правила в порядке вывода triage.
func Presets(now func() time.Time) []Preset {
	return []Preset{
		{Name: "package-issue", Filter: PackageIssue},
		{Name: "under-sla", Filter: UnderSLA},
		{Name: "urgent", Filter: Urgent(now)},
		{Name: "sales", Filter: Sales},
	}
}

// Tags возвращает имена правил, которым соответствует r.
func Tags(presets []Preset, r SupportRequest) []string {
	var tags []string
	for _, p := range presets {
		if p.Filter(r) {
			tags = append(tags, p.Name)
		}
	}
	return tags
}
