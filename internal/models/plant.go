// Package models contains domain types for the Plant Identifier.
package models

import (
	"encoding/json"
	"strings"
)

// HealthyStatus is the healthStatus value the model uses for a plant with no disease.
const HealthyStatus = "Healthy"

// PlantRecord is the structured identification result decoded from one model reply.
// Every field is optional because the model does not always populate them.
// Keys the model returns that are not listed here, or listed keys whose JSON type
// does not match, are kept in Extra. Every key of a decoded reply is written back
// out, including empty strings, empty lists and nulls.
type PlantRecord struct {
	Name               string   `json:"name,omitempty" msgpack:"name,omitempty"`
	ScientificName     string   `json:"scientificName,omitempty" msgpack:"scientificName,omitempty"`
	Description        string   `json:"description,omitempty" msgpack:"description,omitempty"`
	CareInstructions   []string `json:"careInstructions,omitempty" msgpack:"careInstructions,omitempty"`
	HealthStatus       string   `json:"healthStatus,omitempty" msgpack:"healthStatus,omitempty"`
	PreventiveMeasures []string `json:"preventiveMeasures,omitempty" msgpack:"preventiveMeasures,omitempty"`
	Family             string   `json:"family,omitempty" msgpack:"family,omitempty"`
	Origin             string   `json:"origin,omitempty" msgpack:"origin,omitempty"`
	GrowthRate         string   `json:"growthRate,omitempty" msgpack:"growthRate,omitempty"`
	MaxHeight          string   `json:"maxHeight,omitempty" msgpack:"maxHeight,omitempty"`

	Extra map[string]json.RawMessage `json:"-" msgpack:"-"`

	// raw is the decoded object as received.
	raw map[string]json.RawMessage
}

// FieldNames lists the JSON keys of PlantRecord in prompt order.
var FieldNames = []string{
	"name",
	"scientificName",
	"description",
	"careInstructions",
	"healthStatus",
	"preventiveMeasures",
	"family",
	"origin",
	"growthRate",
	"maxHeight",
}

// IsHealthy reports whether the model classified the plant as healthy.
func (r *PlantRecord) IsHealthy() bool {
	return r.HealthStatus == HealthyStatus
}

// ShowPreventiveMeasures reports whether a renderer should display the
// preventive measures section. A healthy plant never shows it, even if the
// model filled the list anyway.
func (r *PlantRecord) ShowPreventiveMeasures() bool {
	return r.HealthStatus != "" && !r.IsHealthy() && len(r.PreventiveMeasures) > 0
}

// DisplayName returns the common name, falling back to the scientific name.
func (r *PlantRecord) DisplayName() string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	if strings.TrimSpace(r.ScientificName) != "" {
		return r.ScientificName
	}
	return "Unknown plant"
}

// plantRecordJSON has the same fields as PlantRecord but none of its methods.
type plantRecordJSON PlantRecord

// UnmarshalJSON decodes known keys into typed fields and keeps everything else in Extra.
// A known key whose value has the wrong JSON type is treated as unknown rather than
// failing the whole record.
func (r *PlantRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := PlantRecord{raw: raw}
	for key, val := range raw {
		if rec.decodeField(key, val) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}
		rec.Extra[key] = val
	}

	*r = rec
	return nil
}

func (r *PlantRecord) decodeField(key string, val json.RawMessage) bool {
	switch key {
	case "name":
		return decodeInto(val, &r.Name)
	case "scientificName":
		return decodeInto(val, &r.ScientificName)
	case "description":
		return decodeInto(val, &r.Description)
	case "careInstructions":
		return decodeInto(val, &r.CareInstructions)
	case "healthStatus":
		return decodeInto(val, &r.HealthStatus)
	case "preventiveMeasures":
		return decodeInto(val, &r.PreventiveMeasures)
	case "family":
		return decodeInto(val, &r.Family)
	case "origin":
		return decodeInto(val, &r.Origin)
	case "growthRate":
		return decodeInto(val, &r.GrowthRate)
	case "maxHeight":
		return decodeInto(val, &r.MaxHeight)
	}
	return false
}

// decodeInto only assigns dst when val decodes cleanly.
func decodeInto[T any](val json.RawMessage, dst *T) bool {
	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

// MarshalJSON writes the non-empty typed fields, then every other key of the
// decoded reply with its original value, then Extra.
func (r PlantRecord) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(plantRecordJSON(r))
	if err != nil || (len(r.Extra) == 0 && len(r.raw) == 0) {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(r.raw)+len(r.Extra)+len(FieldNames))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for _, extra := range []map[string]json.RawMessage{r.raw, r.Extra} {
		for key, val := range extra {
			if _, set := merged[key]; !set {
				merged[key] = val
			}
		}
	}
	return json.Marshal(merged)
}

// AsMap returns the record as a generic map, including pass-through keys.
// Used for encodings that cannot carry json.RawMessage directly.
func (r *PlantRecord) AsMap() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
