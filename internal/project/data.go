package project

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kingrea/pm-portal/internal/catalog"
)

// SectionData is the per-section payload. Each catalog section owns exactly one
// concrete type; the enclosing Section's id selects it when decoding.
type SectionData interface {
	Kind() catalog.SectionID
	clone() SectionData
}

// ProductDiscoveryData backs the Product Discovery section.
type ProductDiscoveryData struct {
	Problem          string   `json:"problem,omitempty"`
	TargetMarket     string   `json:"target_market,omitempty"`
	ValueProposition string   `json:"value_proposition,omitempty"`
	Competitors      []string `json:"competitors,omitempty"`
}

func (ProductDiscoveryData) Kind() catalog.SectionID { return catalog.ProductDiscovery }

func (d ProductDiscoveryData) clone() SectionData {
	d.Competitors = cloneStrings(d.Competitors)
	return d
}

// CustomerDiscoveryData backs the Customer Discovery section.
type CustomerDiscoveryData struct {
	Personas   []string `json:"personas,omitempty"`
	Interviews int      `json:"interviews,omitempty"`
	Insights   []string `json:"insights,omitempty"`
}

func (CustomerDiscoveryData) Kind() catalog.SectionID { return catalog.CustomerDiscovery }

func (d CustomerDiscoveryData) clone() SectionData {
	d.Personas = cloneStrings(d.Personas)
	d.Insights = cloneStrings(d.Insights)
	return d
}

// JourneyStage is one step of a user journey.
type JourneyStage struct {
	Name        string   `json:"name"`
	Touchpoints []string `json:"touchpoints,omitempty"`
	PainPoints  []string `json:"pain_points,omitempty"`
}

// UserJourneyData backs the User Journey Mapping section.
type UserJourneyData struct {
	Stages []JourneyStage `json:"stages,omitempty"`
}

func (UserJourneyData) Kind() catalog.SectionID { return catalog.UserJourneyMapping }

func (d UserJourneyData) clone() SectionData {
	if d.Stages == nil {
		return d
	}
	stages := make([]JourneyStage, len(d.Stages))
	for i, st := range d.Stages {
		stages[i] = JourneyStage{
			Name:        st.Name,
			Touchpoints: cloneStrings(st.Touchpoints),
			PainPoints:  cloneStrings(st.PainPoints),
		}
	}
	d.Stages = stages
	return d
}

// TechStackData backs the Tech Stack Canvas section.
type TechStackData struct {
	Frontend       []string `json:"frontend,omitempty"`
	Backend        []string `json:"backend,omitempty"`
	Data           []string `json:"data,omitempty"`
	Infrastructure []string `json:"infrastructure,omitempty"`
}

func (TechStackData) Kind() catalog.SectionID { return catalog.TechStackCanvas }

func (d TechStackData) clone() SectionData {
	d.Frontend = cloneStrings(d.Frontend)
	d.Backend = cloneStrings(d.Backend)
	d.Data = cloneStrings(d.Data)
	d.Infrastructure = cloneStrings(d.Infrastructure)
	return d
}

// Milestone is a dated delivery goal. Due uses YYYY-MM-DD.
type Milestone struct {
	Name string `json:"name"`
	Due  string `json:"due,omitempty"`
	Done bool   `json:"done,omitempty"`
}

// DevScheduleData backs the Dev Schedule section.
type DevScheduleData struct {
	Milestones []Milestone `json:"milestones,omitempty"`
}

func (DevScheduleData) Kind() catalog.SectionID { return catalog.DevSchedule }

func (d DevScheduleData) clone() SectionData {
	if d.Milestones != nil {
		ms := make([]Milestone, len(d.Milestones))
		copy(ms, d.Milestones)
		d.Milestones = ms
	}
	return d
}

// UnmarshalJSON decodes the payload into the type owned by the section id.
func (s *Section) UnmarshalJSON(raw []byte) error {
	var wire struct {
		ID        catalog.SectionID `json:"id"`
		Completed bool              `json:"completed"`
		Data      json.RawMessage   `json:"data,omitempty"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	s.ID = wire.ID
	s.Completed = wire.Completed
	s.Data = nil
	trimmed := bytes.TrimSpace(wire.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	data, err := DecodeSectionData(wire.ID, trimmed)
	if err != nil {
		return err
	}
	s.Data = data
	return nil
}

// DecodeSectionData parses raw into the payload type for id. Unknown fields
// are rejected so a payload stored under the wrong section fails loudly.
func DecodeSectionData(id catalog.SectionID, raw []byte) (SectionData, error) {
	var target SectionData
	switch id {
	case catalog.ProductDiscovery:
		var d ProductDiscoveryData
		if err := strictDecode(raw, &d); err != nil {
			return nil, fmt.Errorf("project: section %d data: %w", id, err)
		}
		target = d
	case catalog.CustomerDiscovery:
		var d CustomerDiscoveryData
		if err := strictDecode(raw, &d); err != nil {
			return nil, fmt.Errorf("project: section %d data: %w", id, err)
		}
		target = d
	case catalog.UserJourneyMapping:
		var d UserJourneyData
		if err := strictDecode(raw, &d); err != nil {
			return nil, fmt.Errorf("project: section %d data: %w", id, err)
		}
		target = d
	case catalog.TechStackCanvas:
		var d TechStackData
		if err := strictDecode(raw, &d); err != nil {
			return nil, fmt.Errorf("project: section %d data: %w", id, err)
		}
		target = d
	case catalog.DevSchedule:
		var d DevScheduleData
		if err := strictDecode(raw, &d); err != nil {
			return nil, fmt.Errorf("project: section %d data: %w", id, err)
		}
		target = d
	default:
		return nil, fmt.Errorf("project: section %d has no payload schema", id)
	}
	return target, nil
}

func strictDecode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
