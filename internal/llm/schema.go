package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// leaseSchemaJSON constrains the model output and doubles as the local
// validation schema. Passed to the API as a structured-output format and
// compiled once for post-hoc validation of whatever the model returns.
const leaseSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "summary", "findings"],
  "properties": {
    "schema_version": {"type": "string"},
    "summary": {
      "type": "object",
      "additionalProperties": true,
      "required": ["verdict", "risk_score", "jurisdiction"],
      "properties": {
        "verdict": {"enum": ["ok", "conditional_ok", "do_not_sign"]},
        "risk_score": {"type": "integer", "minimum": 0, "maximum": 100},
        "jurisdiction": {
          "type": "object",
          "additionalProperties": true,
          "properties": {
            "country": {"type": "string"},
            "state": {"type": "string"},
            "city": {"type": "string"}
          }
        },
        "notes": {"type": "string"}
      }
    },
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": true,
        "required": ["status", "category", "explanation", "evidence", "original_text"],
        "properties": {
          "id": {"type": "string"},
          "status": {"enum": ["ok", "borderline", "non_compliant"]},
          "severity": {"enum": ["low", "medium", "high"]},
          "category": {
            "enum": [
              "money_dates", "deposit_return", "renewal", "repairs_entry",
              "termination", "insurance_indemnity", "rights_limits",
              "utilities", "dispute", "other"
            ]
          },
          "statutes": {"type": "array", "items": {"type": "string"}},
          "explanation": {"type": "string"},
          "recommendation": {"type": "string"},
          "original_text": {"type": "string", "minLength": 40, "maxLength": 2000},
          "evidence": {
            "type": "array",
            "items": {
              "type": "object",
              "additionalProperties": true,
              "required": ["page", "quote"],
              "properties": {
                "page": {"type": "integer", "minimum": 1},
                "section": {"type": "string"},
                "quote": {"type": "string", "minLength": 20, "maxLength": 400}
              }
            }
          },
          "tags": {"type": "array", "items": {"type": "string"}},
          "low_confidence": {"type": "boolean"}
        }
      }
    },
    "law_checks": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": true,
        "required": ["rule", "status"],
        "properties": {
          "rule": {"type": "string"},
          "status": {"enum": ["ok", "needs_detail", "exceeds", "missing"]},
          "statute": {"type": "string"}
        }
      }
    },
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": true,
        "required": ["title", "priority", "blocker"],
        "properties": {
          "title": {"type": "string"},
          "priority": {"enum": ["low", "medium", "high"]},
          "blocker": {"type": "boolean"}
        }
      }
    },
    "sources": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": true,
        "required": ["page", "section"],
        "properties": {
          "page": {"type": "integer"},
          "section": {"type": "string"}
        }
      }
    },
    "unstructured_appendix": {"type": "string"}
  }
}`

var leaseSchema = jsonschema.MustCompileString("lease_struct.json", leaseSchemaJSON)

// ValidateOutput checks raw model output against the lease schema.
func ValidateOutput(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if err := leaseSchema.Validate(v); err != nil {
		return fmt.Errorf("model output violates schema: %w", err)
	}
	return nil
}
