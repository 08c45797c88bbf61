package weather

import "encoding/json"

// ParseConditions extracts temperature (main.temp) and description
// (weather[0].description) from an upstream payload. Each extraction degrades
// to nil when the expected shape is missing or malformed; this never returns
// an error, so a bad payload still produces a stored record.
func ParseConditions(payload []byte) (*float64, *string) {
	var outer struct {
		Main    json.RawMessage `json:"main"`
		Weather json.RawMessage `json:"weather"`
	}
	if err := json.Unmarshal(payload, &outer); err != nil {
		return nil, nil
	}

	var temp *float64
	if len(outer.Main) > 0 {
		var main struct {
			Temp *float64 `json:"temp"`
		}
		if err := json.Unmarshal(outer.Main, &main); err == nil {
			temp = main.Temp
		}
	}

	var desc *string
	if len(outer.Weather) > 0 {
		var conditions []struct {
			Description *string `json:"description"`
		}
		if err := json.Unmarshal(outer.Weather, &conditions); err == nil && len(conditions) > 0 {
			desc = conditions[0].Description
		}
	}

	return temp, desc
}
