package crossfile

import "strings"

// LeadFrameOverride replaces the lead-frame type of every row whose package
// group and speed match. It corrects known mislabelled reference entries.
type LeadFrameOverride struct {
	PackageGroup string
	Speed        float64
	LeadFrame    string
}

// ProcessRule names the cutting process used for a package group at a speed.
type ProcessRule struct {
	PackageGroup string
	Speed        float64
	Process      string
}

// DefaultLeadFrameOverrides returns the production override table.
func DefaultLeadFrameOverrides() []LeadFrameOverride {
	return []LeadFrameOverride{
		{PackageGroup: "QFN", Speed: 5.0, LeadFrame: "CU"},
		{PackageGroup: "QFN", Speed: 4.0, LeadFrame: "PPF"},
	}
}

// DefaultProcessRules returns the production process table.
func DefaultProcessRules() []ProcessRule {
	return []ProcessRule{
		{PackageGroup: "SLP", Speed: 5, Process: "Full Cut"},
		{PackageGroup: "SLP", Speed: 3, Process: "Step Cut"},
	}
}

func normalizeGroup(g string) string {
	return strings.ToUpper(strings.TrimSpace(g))
}

func applyLeadFrame(overrides []LeadFrameOverride, group string, speed float64, current string) string {
	g := normalizeGroup(group)
	for _, o := range overrides {
		if normalizeGroup(o.PackageGroup) == g && o.Speed == speed {
			return o.LeadFrame
		}
	}
	return current
}

func applyProcess(rules []ProcessRule, group string, speed float64) string {
	g := normalizeGroup(group)
	for _, r := range rules {
		if normalizeGroup(r.PackageGroup) == g && r.Speed == speed {
			return r.Process
		}
	}
	return ""
}
