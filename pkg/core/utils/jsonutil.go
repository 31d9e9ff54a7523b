package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors in LLM output: missing
// quotes, single quotes, unclosed brackets, trailing commas, markdown
// code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse tries multiple strategies to extract valid JSON into schema.
// Order: standard parse, repair, hjson (most lenient).
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if jsonBytes, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(jsonBytes, schema); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("all parsing strategies failed for model output")
}
