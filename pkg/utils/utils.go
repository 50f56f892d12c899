package utils

import (
	"encoding/json"
	"math"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig generates a JSON schema string from a config struct.
func GetSchemaFromConfig(config any) (string, error) {
	schema := jsonschema.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// RoundTo rounds a value to the given number of decimal places.
// Used for presentation only, never for ledger arithmetic.
func RoundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))

	return math.Round(value*factor) / factor
}
