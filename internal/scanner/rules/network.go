package rules

import (
	"fmt"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

const (
	worldCIDR     = "0.0.0.0/0"
	worldCIDRIPv6 = "::/0"
	sshPort       = 22
	rdpPort       = 3389
)

// ruleCoversPort reports whether an inbound rule's port range includes the
// given port. FromPort==0 && ToPort==0 means "all ports" for -1/any rules.
func ruleCoversPort(r models.SecurityRule, port int) bool {
	if r.FromPort == 0 && r.ToPort == 0 {
		return true
	}
	return r.FromPort <= port && port <= r.ToPort
}

func isWorldOpen(r models.SecurityRule) bool {
	return r.CIDR == worldCIDR || r.CIDR == worldCIDRIPv6
}

// OpenSSHRule flags security rules that allow inbound SSH from anywhere
type OpenSSHRule struct{}

func (OpenSSHRule) ID() string               { return "net_ssh_open_world" }
func (OpenSSHRule) Area() models.ServiceArea { return models.AreaNetwork }

func (OpenSSHRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	return openPortFindings(sig.Network.SecurityRules, "net_ssh_open_world", sshPort, "SSH")
}

// OpenRDPRule flags security rules that allow inbound RDP from anywhere
type OpenRDPRule struct{}

func (OpenRDPRule) ID() string               { return "net_rdp_open_world" }
func (OpenRDPRule) Area() models.ServiceArea { return models.AreaNetwork }

func (OpenRDPRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	return openPortFindings(sig.Network.SecurityRules, "net_rdp_open_world", rdpPort, "RDP")
}

func openPortFindings(srs []models.SecurityRule, ruleID string, port int, label string) Result {
	var res Result
	flagged := make(map[string]bool) // one finding per group, not per rule entry
	for _, sr := range srs {
		if !isWorldOpen(sr) || !ruleCoversPort(sr, port) || flagged[sr.GroupID] {
			continue
		}
		flagged[sr.GroupID] = true
		res.Findings = append(res.Findings, newFinding(
			ruleID,
			fmt.Sprintf("Security group %s allows %s from the internet", sr.GroupID, label),
			models.SeverityHigh,
			models.ResourceRef{Type: "security_group", ID: sr.GroupID},
			map[string]any{"group_name": sr.GroupName, "region": sr.Region, "cidr": sr.CIDR, "port": port},
		))
	}
	return res
}

// PublicInstanceRule flags compute instances with a publicly routable
// address as low, and emits instance assets.
type PublicInstanceRule struct{}

func (PublicInstanceRule) ID() string               { return "net_instance_public_ip" }
func (PublicInstanceRule) Area() models.ServiceArea { return models.AreaCompute }

func (PublicInstanceRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, inst := range sig.Compute.Instances {
		res.Assets = append(res.Assets, &models.Asset{
			Name:       inst.Name,
			Type:       "instance",
			ExternalID: inst.ID,
			Region:     inst.Region,
			Metadata:   map[string]any{"state": inst.State, "public_ip": inst.PublicIP},
		})
		if inst.PublicIP == "" {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"net_instance_public_ip",
			fmt.Sprintf("Instance %s has a public IP address", inst.ID),
			models.SeverityLow,
			models.ResourceRef{ARN: inst.ARN, Type: "instance", ID: inst.ID},
			map[string]any{"public_ip": inst.PublicIP, "region": inst.Region},
		))
	}
	return res
}

// DefaultNetworkRule flags the presence of provider auto-created default
// networks as low.
type DefaultNetworkRule struct{}

func (DefaultNetworkRule) ID() string               { return "net_default_network_present" }
func (DefaultNetworkRule) Area() models.ServiceArea { return models.AreaNetwork }

func (DefaultNetworkRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, dn := range sig.Network.DefaultNetworks {
		res.Findings = append(res.Findings, newFinding(
			"net_default_network_present",
			fmt.Sprintf("Default network %s exists in %s", dn.ID, dn.Region),
			models.SeverityLow,
			models.ResourceRef{Type: "network", ID: dn.ID},
			map[string]any{"region": dn.Region},
		))
	}
	return res
}
