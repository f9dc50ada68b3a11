package rules

import (
	"fmt"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// TrailMissingRule flags a region with no audit trail configured as high.
// It only fires when the area was actually collected, so a collection
// failure does not masquerade as a missing trail.
type TrailMissingRule struct{}

func (TrailMissingRule) ID() string               { return "trail_missing" }
func (TrailMissingRule) Area() models.ServiceArea { return models.AreaAuditTrail }

func (TrailMissingRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	if !sig.AuditTrail.Collected || len(sig.AuditTrail.Trails) > 0 {
		return Result{}
	}
	f := newFinding(
		"trail_missing",
		"No audit trail configured in the scanned region",
		models.SeverityHigh,
		models.ResourceRef{Type: "audit_trail", ID: "none"},
		nil,
	)
	return Result{Findings: []*models.Finding{f}}
}

// TrailNotLoggingRule flags trails that exist but are not recording as high
type TrailNotLoggingRule struct{}

func (TrailNotLoggingRule) ID() string               { return "trail_not_logging" }
func (TrailNotLoggingRule) Area() models.ServiceArea { return models.AreaAuditTrail }

func (TrailNotLoggingRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, t := range sig.AuditTrail.Trails {
		if t.IsLogging {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"trail_not_logging",
			fmt.Sprintf("Audit trail %s is not recording events", t.Name),
			models.SeverityHigh,
			models.ResourceRef{ARN: t.ARN, Type: "audit_trail", ID: t.Name},
			map[string]any{"region": t.Region},
		))
	}
	return res
}

// TrailValidationRule flags trails without log-integrity validation as medium
type TrailValidationRule struct{}

func (TrailValidationRule) ID() string               { return "trail_validation_disabled" }
func (TrailValidationRule) Area() models.ServiceArea { return models.AreaAuditTrail }

func (TrailValidationRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, t := range sig.AuditTrail.Trails {
		if t.LogFileValidation {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"trail_validation_disabled",
			fmt.Sprintf("Audit trail %s lacks log file validation", t.Name),
			models.SeverityMedium,
			models.ResourceRef{ARN: t.ARN, Type: "audit_trail", ID: t.Name},
			map[string]any{"region": t.Region},
		))
	}
	return res
}
