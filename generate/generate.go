// Package generate maps a validated DCR form into the final rule object and
// its ARM template and Bicep renderings. Callers are expected to have checked
// for blocking validation findings first; the generator does not re-validate.
package generate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/azstreams/dcrbuilder/dcr"
)

// Output shapes. These mirror the form model minus the UI-only identifiers,
// which must never reach generated output.

type Column struct {
	Name string         `json:"name"`
	Type dcr.ColumnType `json:"type"`
}

type StreamDeclaration struct {
	Columns []Column `json:"columns"`
}

type Destination struct {
	WorkspaceResourceID string `json:"workspaceResourceId"`
	Name                string `json:"name"`
}

type Destinations struct {
	LogAnalytics []Destination `json:"logAnalytics"`
}

type DataFlow struct {
	Streams      []string `json:"streams"`
	Destinations []string `json:"destinations"`
	TransformKQL string   `json:"transformKql"`
	OutputStream string   `json:"outputStream"`
}

type Properties struct {
	Description              string                       `json:"description,omitempty"`
	DataCollectionEndpointID string                       `json:"dataCollectionEndpointId,omitempty"`
	StreamDeclarations       map[string]StreamDeclaration `json:"streamDeclarations"`
	Destinations             Destinations                 `json:"destinations"`
	DataFlows                []DataFlow                   `json:"dataFlows"`
}

type Rule struct {
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	Kind       string     `json:"kind"`
	Properties Properties `json:"properties"`
}

// WorkspaceResourceID synthesizes the canonical Azure resource ID for a
// decomposed workspace reference. Path segments are lower case by
// convention; Azure treats them case-insensitively.
func WorkspaceResourceID(d dcr.LogAnalyticsDestination) string {
	return fmt.Sprintf("/subscriptions/%s/resourcegroups/%s/providers/microsoft.operationalinsights/workspaces/%s",
		d.SubscriptionID, d.ResourceGroupName, d.WorkspaceName)
}

// DCR builds the rule object from form state. Pure: identical input yields
// identical output.
func DCR(f *dcr.FormData) *Rule {
	decls := make(map[string]StreamDeclaration, len(f.StreamDeclarations))
	for name, decl := range f.StreamDeclarations {
		cols := make([]Column, 0, len(decl.Columns))
		for _, c := range decl.Columns {
			cols = append(cols, Column{Name: c.Name, Type: c.Type})
		}
		decls[name] = StreamDeclaration{Columns: cols}
	}

	dests := make([]Destination, 0, len(f.Destinations.LogAnalytics))
	for _, d := range f.Destinations.LogAnalytics {
		dests = append(dests, Destination{
			WorkspaceResourceID: WorkspaceResourceID(d),
			Name:                d.Name,
		})
	}

	flows := make([]DataFlow, 0, len(f.DataFlows))
	for _, fl := range f.DataFlows {
		flows = append(flows, DataFlow{
			Streams:      append([]string{}, fl.Streams...),
			Destinations: append([]string{}, fl.Destinations...),
			TransformKQL: fl.TransformKQL,
			OutputStream: dcr.FormatOutputStream(fl.OutputStream),
		})
	}

	return &Rule{
		Name:     f.Name,
		Location: f.Location,
		Kind:     "Direct",
		Properties: Properties{
			Description:              f.Description,
			DataCollectionEndpointID: f.DataCollectionEndpointID,
			StreamDeclarations:       decls,
			Destinations:             Destinations{LogAnalytics: dests},
			DataFlows:                flows,
		},
	}
}

// JSON renders the rule as indented JSON. encoding/json sorts map keys, so
// output is byte-stable for the same input.
func JSON(r *Rule) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// sortedKeys is shared by the Bicep renderer; kept here next to the JSON
// determinism note it mirrors.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
