// Package dcr holds the data model shared by the inference, validation and
// generation stages of the builder: the column type system, stream
// declarations, destinations, data flows and the form aggregate that ties
// them together.
package dcr

import "strings"

type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeInt      ColumnType = "int"
	TypeLong     ColumnType = "long"
	TypeReal     ColumnType = "real"
	TypeBoolean  ColumnType = "boolean"
	TypeDynamic  ColumnType = "dynamic"
	TypeDatetime ColumnType = "datetime"
)

// Column is one field of a stream schema. ID is a UI list key only and never
// reaches generated output.
type Column struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

type StreamDeclaration struct {
	Columns []Column `json:"columns"`
}

// LogAnalyticsDestination is the decomposed workspace reference. The
// workspace resource ID string is synthesized at generation time; it is not
// stored here.
type LogAnalyticsDestination struct {
	ID                string `json:"id"`
	SubscriptionID    string `json:"subscriptionId"`
	ResourceGroupName string `json:"resourceGroupName"`
	WorkspaceName     string `json:"workspaceName"`
	Name              string `json:"name"`
}

type Destinations struct {
	LogAnalytics []LogAnalyticsDestination `json:"logAnalytics"`
}

type DataFlow struct {
	ID           string   `json:"id"`
	Streams      []string `json:"streams"`
	Destinations []string `json:"destinations"`
	TransformKQL string   `json:"transformKql"`
	OutputStream string   `json:"outputStream"`
}

// FormData is the aggregate root of one editing session. It is mutated in
// place by edits and re-inference, and read (never mutated) by the validator
// and the generator.
type FormData struct {
	Name                     string                       `json:"name"`
	Location                 string                       `json:"location"`
	Description              string                       `json:"description"`
	DataCollectionEndpointID string                       `json:"dataCollectionEndpointId,omitempty"`
	StreamDeclarations       map[string]StreamDeclaration `json:"streamDeclarations"`
	Destinations             Destinations                 `json:"destinations"`
	DataFlows                []DataFlow                   `json:"dataFlows"`
}

func NewFormData() *FormData {
	return &FormData{
		StreamDeclarations: map[string]StreamDeclaration{},
		Destinations:       Destinations{LogAnalytics: []LogAnalyticsDestination{}},
		DataFlows:          []DataFlow{},
	}
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a single finding from the validator. Error severity
// blocks generation, warning does not.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

const (
	// StreamNamePrefix is required on every declared stream name.
	StreamNamePrefix = "Custom-"

	MaxStreamNameLen = 64

	// DefaultStreamName is used for freshly inferred schemas before the user
	// names the stream.
	DefaultStreamName = "Custom-MyStream"
)

// FormatOutputStream normalizes a user-entered output stream name.
// Built-in Microsoft- tables pass through untouched; everything else gets the
// Custom- prefix and, for custom tables, the _CL suffix Azure expects.
func FormatOutputStream(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "Microsoft-") {
		return name
	}
	if !strings.HasPrefix(name, StreamNamePrefix) {
		name = StreamNamePrefix + name
	}
	if !strings.HasSuffix(name, "_CL") {
		name += "_CL"
	}
	return name
}
