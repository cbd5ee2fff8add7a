package generate

import "encoding/json"

const (
	// ResourceType and APIVersion identify the Azure resource the generated
	// rule deploys as.
	ResourceType = "Microsoft.Insights/dataCollectionRules"
	APIVersion   = "2024-03-11"

	armSchema = "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#"
)

type armResource struct {
	Type       string     `json:"type"`
	APIVersion string     `json:"apiVersion"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	Kind       string     `json:"kind"`
	Properties Properties `json:"properties"`
}

type armTemplate struct {
	Schema         string        `json:"$schema"`
	ContentVersion string        `json:"contentVersion"`
	Resources      []armResource `json:"resources"`
}

// ARMTemplate wraps the rule as the single resource of a minimal deployment
// template.
func ARMTemplate(r *Rule) ([]byte, error) {
	t := armTemplate{
		Schema:         armSchema,
		ContentVersion: "1.0.0.0",
		Resources: []armResource{{
			Type:       ResourceType,
			APIVersion: APIVersion,
			Name:       r.Name,
			Location:   r.Location,
			Kind:       r.Kind,
			Properties: r.Properties,
		}},
	}
	return json.MarshalIndent(t, "", "  ")
}
