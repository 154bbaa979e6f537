package reader

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// attrsSchema checks the parts of a group's .zattrs this package reads.
const attrsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"definitions": {
		"transforms": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type"],
				"properties": {
					"type": {"enum": ["identity", "scale", "translation"]},
					"scale": {"type": "array", "items": {"type": "number"}},
					"translation": {"type": "array", "items": {"type": "number"}}
				}
			}
		}
	},
	"properties": {
		"multiscales": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["datasets"],
				"properties": {
					"version": {"type": "string"},
					"name": {"type": "string"},
					"axes": {
						"type": "array",
						"items": {
							"anyOf": [
								{"type": "string"},
								{
									"type": "object",
									"required": ["name"],
									"properties": {"name": {"type": "string"}, "type": {"type": "string"}}
								}
							]
						}
					},
					"datasets": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["path"],
							"properties": {
								"path": {"type": "string"},
								"coordinateTransformations": {"$ref": "#/definitions/transforms"}
							}
						}
					},
					"coordinateTransformations": {"$ref": "#/definitions/transforms"}
				}
			}
		},
		"omero": {
			"type": "object",
			"properties": {
				"channels": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"label": {"type": "string"},
							"color": {"type": "string"},
							"active": {"type": "boolean"},
							"window": {
								"type": "object",
								"properties": {"start": {"type": "number"}, "end": {"type": "number"}}
							}
						}
					}
				}
			}
		},
		"labels": {"type": "array", "items": {"type": "string"}},
		"image-label": {
			"type": "object",
			"properties": {
				"colors": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["label-value"],
						"properties": {"rgba": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 4}}
					}
				},
				"properties": {"type": "array", "items": {"type": "object"}}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func getSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("zattrs.json", attrsSchema)
	})
	return compiledSchema, schemaErr
}

// validateAttrs checks a decoded .zattrs document, decoded with numbers as json.Number.
func validateAttrs(key string, doc interface{}) error {
	sch, err := getSchema()
	if err != nil {
		return fmt.Errorf("unable to compile attributes schema: %v", err)
	}
	if err = sch.Validate(doc); err != nil {
		return fmt.Errorf("%s is not valid OME-NGFF metadata: %v", key, err)
	}
	return nil
}
