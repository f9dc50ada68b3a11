package rules

import (
	"fmt"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// Access key rotation thresholds
const (
	accessKeyStaleDays    = 90
	accessKeyAncientDays  = 180
	adminPolicyName       = "AdministratorAccess"
	rootResourceID        = "root"
)

// RootMFARule flags a root account without MFA as critical
type RootMFARule struct{}

func (RootMFARule) ID() string                { return "iam_root_mfa_disabled" }
func (RootMFARule) Area() models.ServiceArea  { return models.AreaIdentity }

func (RootMFARule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	root := sig.Identity.Root
	if !root.DataAvailable || root.MFAEnabled {
		return Result{}
	}
	f := newFinding(
		"iam_root_mfa_disabled",
		"Root account does not have MFA enabled",
		models.SeverityCritical,
		models.ResourceRef{Type: "iam_root", ID: rootResourceID},
		map[string]any{"has_access_keys": root.HasAccessKeys},
	)
	return Result{Findings: []*models.Finding{f}}
}

// ConsoleMFARule flags console-enabled users without MFA as high.
// API-only users (no login profile) are not flagged.
type ConsoleMFARule struct{}

func (ConsoleMFARule) ID() string               { return "iam_user_console_no_mfa" }
func (ConsoleMFARule) Area() models.ServiceArea { return models.AreaIdentity }

func (ConsoleMFARule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, u := range sig.Identity.Users {
		res.Assets = append(res.Assets, userAsset(u))
		if !u.ConsoleAccess || u.MFAEnabled {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"iam_user_console_no_mfa",
			fmt.Sprintf("User %s has console access without MFA", u.UserName),
			models.SeverityHigh,
			models.ResourceRef{ARN: u.ARN, Type: "iam_user", ID: u.UserName},
			map[string]any{"user": u.UserName},
		))
	}
	return res
}

// StaleAccessKeyRule flags access keys older than 90 days as medium and
// older than 180 days as high. Inactive keys are skipped.
type StaleAccessKeyRule struct{}

func (StaleAccessKeyRule) ID() string               { return "iam_access_key_stale" }
func (StaleAccessKeyRule) Area() models.ServiceArea { return models.AreaIdentity }

func (StaleAccessKeyRule) Evaluate(sig *models.CloudSignal, now time.Time) Result {
	var res Result
	for _, u := range sig.Identity.Users {
		for _, key := range u.AccessKeys {
			if !key.Active || key.CreatedAt.IsZero() {
				continue
			}
			ageDays := int(now.Sub(key.CreatedAt).Hours() / 24)
			if ageDays < accessKeyStaleDays {
				continue
			}
			sev := models.SeverityMedium
			if ageDays >= accessKeyAncientDays {
				sev = models.SeverityHigh
			}
			res.Findings = append(res.Findings, newFinding(
				"iam_access_key_stale",
				fmt.Sprintf("Access key for %s is %d days old", u.UserName, ageDays),
				sev,
				models.ResourceRef{ARN: u.ARN, Type: "iam_access_key", ID: key.ID},
				map[string]any{"user": u.UserName, "age_days": ageDays},
			))
		}
	}
	return res
}

// AdminPolicyRule flags users with a directly attached full-administrator
// policy as high.
type AdminPolicyRule struct{}

func (AdminPolicyRule) ID() string               { return "iam_user_admin_policy" }
func (AdminPolicyRule) Area() models.ServiceArea { return models.AreaIdentity }

func (AdminPolicyRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, u := range sig.Identity.Users {
		for _, p := range u.AttachedPolicies {
			if p != adminPolicyName {
				continue
			}
			res.Findings = append(res.Findings, newFinding(
				"iam_user_admin_policy",
				fmt.Sprintf("User %s has %s attached directly", u.UserName, adminPolicyName),
				models.SeverityHigh,
				models.ResourceRef{ARN: u.ARN, Type: "iam_user", ID: u.UserName},
				map[string]any{"user": u.UserName, "policy": p},
			))
			break
		}
	}
	return res
}

// PasswordPolicyRule flags an absent account password policy as medium
type PasswordPolicyRule struct{}

func (PasswordPolicyRule) ID() string               { return "iam_password_policy_missing" }
func (PasswordPolicyRule) Area() models.ServiceArea { return models.AreaIdentity }

func (PasswordPolicyRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	// Only meaningful when identity signal was actually collected
	if !sig.Identity.Root.DataAvailable || sig.Identity.PasswordPolicy != nil {
		return Result{}
	}
	f := newFinding(
		"iam_password_policy_missing",
		"Account has no password policy configured",
		models.SeverityMedium,
		models.ResourceRef{Type: "iam_account", ID: "password-policy"},
		nil,
	)
	return Result{Findings: []*models.Finding{f}}
}

func userAsset(u models.IAMUser) *models.Asset {
	return &models.Asset{
		Name:       u.UserName,
		Type:       "iam_user",
		ExternalID: u.ARN,
		Metadata: map[string]any{
			"console_access": u.ConsoleAccess,
			"mfa_enabled":    u.MFAEnabled,
		},
	}
}
