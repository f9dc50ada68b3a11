package rules

import (
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// SecurityFeedRule ingests the provider's managed security-findings feed,
// when enabled on the account. Findings pass through with their
// provider-assigned severity and status, normalized to the canonical
// vocabulary. The feed is the one rule that can emit RESOLVED findings,
// which is what drives explicit resolution downstream.
type SecurityFeedRule struct{}

func (SecurityFeedRule) ID() string               { return "security_feed_finding" }
func (SecurityFeedRule) Area() models.ServiceArea { return models.AreaSecurityFeed }

func (SecurityFeedRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	if !sig.SecurityFeed.Enabled {
		return Result{}
	}

	var res Result
	for _, ff := range sig.SecurityFeed.Findings {
		ruleID := FeedRuleID(ff.GeneratorID)
		f := &models.Finding{
			RuleID:   ruleID,
			Title:    ff.Title,
			Severity: models.ParseSeverity(ff.Severity),
			Status:   models.ParseFindingStatus(ff.Status),
			Resource: models.ResourceRef{
				ARN:  ff.ResourceARN,
				Type: ff.ResourceType,
				ID:   ff.ResourceID,
			},
			Details: ff.Detail,
		}
		res.Findings = append(res.Findings, f)
	}
	return res
}

// FeedRuleID derives the stable rule identifier for a feed finding from
// its generator. Distinct generators get distinct identity keys so two
// feed findings on the same resource do not collide.
func FeedRuleID(generatorID string) string {
	if generatorID == "" {
		return "feed_unknown"
	}
	return "feed_" + generatorID
}
