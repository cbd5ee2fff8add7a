// Package validate checks an edited DCR form and reports every finding at
// once. Findings are data, not errors: error severity blocks generation,
// warning severity does not.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/azstreams/dcrbuilder/dcr"
)

var guidRe = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// FormData evaluates every rule against f and returns all findings. It is a
// pure function; f is never mutated.
func FormData(f *dcr.FormData) []dcr.ValidationError {
	var errs []dcr.ValidationError

	fail := func(field, message string) {
		errs = append(errs, dcr.ValidationError{Field: field, Message: message, Severity: dcr.SeverityError})
	}
	warn := func(field, message string) {
		errs = append(errs, dcr.ValidationError{Field: field, Message: message, Severity: dcr.SeverityWarning})
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		fail("name", "Rule name is required")
	} else if len(name) < 3 {
		warn("name", "Rule name should be at least 3 characters")
	}

	if strings.TrimSpace(f.Location) == "" {
		fail("location", "Location is required")
	}

	if len(f.StreamDeclarations) == 0 {
		fail("streamDeclarations", "At least one stream declaration is required")
	}
	// Findings are an ordered list; map iteration would shuffle them between
	// runs.
	streamNames := make([]string, 0, len(f.StreamDeclarations))
	for streamName := range f.StreamDeclarations {
		streamNames = append(streamNames, streamName)
	}
	sort.Strings(streamNames)
	for _, streamName := range streamNames {
		decl := f.StreamDeclarations[streamName]
		if !strings.HasPrefix(streamName, dcr.StreamNamePrefix) {
			fail("streamDeclarations", fmt.Sprintf("Stream name %q must start with %q", streamName, dcr.StreamNamePrefix))
		}
		if len(streamName) > dcr.MaxStreamNameLen {
			fail("streamDeclarations", fmt.Sprintf("Stream name %q exceeds %d characters", streamName, dcr.MaxStreamNameLen))
		}
		if len(decl.Columns) == 0 {
			fail("streamDeclarations", fmt.Sprintf("Stream %q must have at least one column", streamName))
		}
		for i, col := range decl.Columns {
			if strings.TrimSpace(col.Name) == "" {
				fail("streamDeclarations", fmt.Sprintf("Stream %q column %d must have a name", streamName, i+1))
			}
		}
	}

	if len(f.Destinations.LogAnalytics) == 0 {
		fail("destinations", "At least one Log Analytics destination is required")
	}
	for _, dest := range f.Destinations.LogAnalytics {
		if strings.TrimSpace(dest.SubscriptionID) == "" {
			fail("destinations", "Subscription ID is required")
		} else if !guidRe.MatchString(strings.TrimSpace(dest.SubscriptionID)) {
			warn("destinations", fmt.Sprintf("Subscription ID %q does not look like a GUID", dest.SubscriptionID))
		}
		if strings.TrimSpace(dest.ResourceGroupName) == "" {
			fail("destinations", "Resource group name is required")
		}
		if strings.TrimSpace(dest.WorkspaceName) == "" {
			fail("destinations", "Workspace name is required")
		}
		if strings.TrimSpace(dest.Name) == "" {
			fail("destinations", "Destination name is required")
		}
	}

	if len(f.DataFlows) == 0 {
		fail("dataFlows", "At least one data flow is required")
	}
	for _, flow := range f.DataFlows {
		if len(flow.Streams) == 0 {
			fail("dataFlows", "Data flow must reference at least one stream")
		}
		if len(flow.Destinations) == 0 {
			fail("dataFlows", "Data flow must reference at least one destination")
		}
		if strings.TrimSpace(flow.TransformKQL) == "" {
			fail("dataFlows", "Transform KQL is required")
		}
		if strings.TrimSpace(flow.OutputStream) == "" {
			// Generation may proceed without an output stream.
			warn("dataFlows", "Output stream is required")
		}
	}

	return errs
}

// HasBlocking reports whether any finding has error severity.
func HasBlocking(errs []dcr.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == dcr.SeverityError {
			return true
		}
	}
	return false
}
