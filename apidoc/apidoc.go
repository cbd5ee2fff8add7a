// Package apidoc describes the HTTP surface as an OpenAPI document, served
// by the server at /openapi.json.
package apidoc

import "github.com/getkin/kin-openapi/openapi3"

func respond(desc string) *openapi3.ResponseRef {
	d := desc
	return &openapi3.ResponseRef{Value: &openapi3.Response{Description: &d}}
}

// Doc builds the OpenAPI description of the builder API.
func Doc() *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:   "dcrbuilder",
			Version: "0.1.0",
		},
		Paths: openapi3.Paths{
			"/api/dcr": &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "storeDcr",
					Summary:     "Store DCR JSON and return a share ID",
					Responses: openapi3.Responses{
						"200": respond("Share ID"),
						"400": respond("Missing json"),
						"413": respond("Entry too large"),
					},
				},
			},
			"/api/dcr/{id}": &openapi3.PathItem{
				Get: &openapi3.Operation{
					OperationID: "getDcr",
					Summary:     "Fetch shared DCR JSON by ID",
					Responses: openapi3.Responses{
						"200": respond("Stored DCR JSON"),
						"404": respond("Not found"),
					},
				},
				Put: &openapi3.Operation{
					OperationID: "updateDcr",
					Summary:     "Overwrite shared DCR JSON, creating the entry if unknown",
					Responses: openapi3.Responses{
						"204": respond("Updated"),
						"400": respond("Missing json"),
						"413": respond("Entry too large"),
					},
				},
			},
			"/api/infer": &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "inferColumns",
					Summary:     "Infer stream columns from sample JSON",
					Responses: openapi3.Responses{
						"200": respond("Inferred columns"),
						"400": respond("Invalid or oversized JSON"),
					},
				},
			},
			"/api/validate": &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "validateForm",
					Summary:     "Validate DCR form data",
					Responses: openapi3.Responses{
						"200": respond("Validation findings"),
					},
				},
			},
			"/api/generate": &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "generateDcr",
					Summary:     "Generate DCR JSON, ARM template and Bicep from form data",
					Responses: openapi3.Responses{
						"200": respond("Generated outputs"),
						"422": respond("Blocking validation findings"),
					},
				},
			},
		},
	}
}
