package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Contract checks a raw service response against a JSON schema before it is decoded,
// so a drifting service fails loudly instead of yielding zero-valued models.
type Contract struct {
	name   string
	schema *gojsonschema.Schema
}

// NewContract compiles a JSON schema document.
func NewContract(name, schema string) (*Contract, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile %s contract: %w", name, err)
	}
	return &Contract{name: name, schema: compiled}, nil
}

// MustContract is NewContract for package-level schemas known at compile time.
func MustContract(name, schema string) *Contract {
	c, err := NewContract(name, schema)
	if err != nil {
		panic(err)
	}
	return c
}

// Check validates body. The returned error lists every violation.
func (c *Contract) Check(body []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%s contract: %w", c.name, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%s contract violated: %s", c.name, strings.Join(errs, "; "))
	}

	return nil
}

const idSchema = `{"type": ["integer", "string"]}`

// Response contracts of the pizza service.
var (
	AuthResponseContract = MustContract("auth response", `{
		"type": "object",
		"required": ["user", "token"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"user": {
				"type": "object",
				"required": ["id", "email"],
				"properties": {
					"id": `+idSchema+`,
					"email": {"type": "string"},
					"roles": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["role"],
							"properties": {"role": {"type": "string"}}
						}
					}
				}
			}
		}
	}`)

	MenuContract = MustContract("menu", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "title", "price"],
			"properties": {
				"id": `+idSchema+`,
				"title": {"type": "string"},
				"price": {"type": "number", "minimum": 0}
			}
		}
	}`)

	OrderResponseContract = MustContract("order response", `{
		"type": "object",
		"required": ["order", "jwt"],
		"properties": {
			"jwt": {"type": "string"},
			"order": {
				"type": "object",
				"required": ["id", "items"],
				"properties": {
					"id": `+idSchema+`,
					"items": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["menuId", "price"],
							"properties": {
								"menuId": `+idSchema+`,
								"price": {"type": "number"}
							}
						}
					}
				}
			}
		}
	}`)
)
