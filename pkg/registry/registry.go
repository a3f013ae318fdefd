// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// DefaultRegistry is the built-in template set used when no registry file
// is configured.
func DefaultRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		Version: "builtin",
		Templates: []Template{
			{
				Type:     "placement_proposed",
				Subject:  "New Placement Proposal: {{positionTitle}}",
				Body:     "Hello {{recipientName}}, you have been proposed for {{positionTitle}} at {{companyName}}. Match score: {{matchScore}}.",
				Channels: []string{"email", "sms"},
			},
			{
				Type:     "placement_accepted",
				Subject:  "Placement Confirmed: {{positionTitle}}",
				Body:     "Good news {{recipientName}}, your placement for {{positionTitle}} at {{companyName}} has been confirmed.",
				Channels: []string{"email"},
			},
			{
				Type:     "onboarding_started",
				Subject:  "Onboarding Started",
				Body:     "Hello {{recipientName}}, onboarding for your placement {{placementId}} has started.",
				Channels: []string{"email"},
			},
		},
	}
}
