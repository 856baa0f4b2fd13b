package project

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/pm-portal/internal/catalog"
)

func TestNewProjectHasFullIncompleteSectionSet(t *testing.T) {
	p, err := New(3, "  Landing Page ", "Marketing site")
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if p.Name != "Landing Page" {
		t.Fatalf("name not trimmed: %q", p.Name)
	}
	if len(p.Sections) != catalog.Count() {
		t.Fatalf("sections = %d, want %d", len(p.Sections), catalog.Count())
	}
	for i, id := range catalog.IDs() {
		if p.Sections[i].ID != id || p.Sections[i].Completed {
			t.Fatalf("section %d = %+v", i, p.Sections[i])
		}
	}
	if p.Progress() != "0/5 sections" {
		t.Fatalf("progress = %q", p.Progress())
	}
}

func TestNewProjectRejectsBlankInput(t *testing.T) {
	cases := [][2]string{{"", "desc"}, {"name", ""}, {"   ", "desc"}}
	for _, tc := range cases {
		if _, err := New(1, tc[0], tc[1]); !errors.Is(err, ErrInvalidProject) {
			t.Fatalf("New(%q, %q) err = %v, want ErrInvalidProject", tc[0], tc[1], err)
		}
	}
}

func TestRatioIsExactFraction(t *testing.T) {
	p, _ := New(1, "a", "b")
	for done := 0; done <= catalog.Count(); done++ {
		for i := range p.Sections {
			p.Sections[i].Completed = i < done
		}
		want := float64(done) / 5
		if got := p.Ratio(); got != want {
			t.Fatalf("ratio with %d done = %v, want %v", done, got, want)
		}
	}
}

func TestNormalizeRepairsSections(t *testing.T) {
	p := Project{
		ID:   1,
		Name: "x",
		Sections: []Section{
			{ID: 3, Completed: true},
			{ID: 3},
			{ID: 9},
			{ID: 1},
		},
	}
	if !p.Normalize() {
		t.Fatalf("expected normalize to report a change")
	}
	if len(p.Sections) != 5 {
		t.Fatalf("sections = %d", len(p.Sections))
	}
	for i, id := range catalog.IDs() {
		if p.Sections[i].ID != id {
			t.Fatalf("section %d id = %d, want %d", i, p.Sections[i].ID, id)
		}
	}
	if s, _ := p.Section(3); !s.Completed {
		t.Fatalf("first occurrence of section 3 must be kept")
	}
	clean, _ := New(2, "a", "b")
	if clean.Normalize() {
		t.Fatalf("fresh project should already be normal")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p, _ := New(1, "a", "b")
	p.Sections[0].Data = ProductDiscoveryData{Competitors: []string{"acme"}}
	cp := p.Clone()
	cp.Sections[0].Completed = true
	cp.Sections[0].Data.(ProductDiscoveryData).Competitors[0] = "changed"
	if p.Sections[0].Completed {
		t.Fatalf("clone shares sections")
	}
	if p.Sections[0].Data.(ProductDiscoveryData).Competitors[0] != "acme" {
		t.Fatalf("clone shares payload slices")
	}
}

func TestSectionJSONRoundTrip(t *testing.T) {
	p, _ := New(7, "Landing Page", "Marketing site")
	p.Sections[0].Data = ProductDiscoveryData{Problem: "slow checkout", Competitors: []string{"a", "b"}}
	p.Sections[2].Data = UserJourneyData{Stages: []JourneyStage{{Name: "Signup", PainPoints: []string{"captcha"}}}}
	p.Sections[4].Data = DevScheduleData{Milestones: []Milestone{{Name: "Beta", Due: "2026-11-01"}}}
	p.Sections[4].Completed = true

	raw, err := json.Marshal([]Project{p})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"completed":true`) {
		t.Fatalf("unexpected encoding: %s", raw)
	}
	var decoded []Project
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, []Project{p}) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, p)
	}
}

func TestSectionDataShapeMustMatchID(t *testing.T) {
	raw := []byte(`{"id":1,"completed":false,"data":{"milestones":[{"name":"Beta"}]}}`)
	var s Section
	if err := json.Unmarshal(raw, &s); err == nil {
		t.Fatalf("expected schedule payload under product discovery to fail")
	}
	ok := []byte(`{"id":5,"completed":false,"data":{"milestones":[{"name":"Beta"}]}}`)
	if err := json.Unmarshal(ok, &s); err != nil {
		t.Fatalf("valid payload: %v", err)
	}
	if s.Data.Kind() != catalog.DevSchedule {
		t.Fatalf("kind = %d", s.Data.Kind())
	}
	nullData := []byte(`{"id":2,"completed":true,"data":null}`)
	if err := json.Unmarshal(nullData, &s); err != nil || s.Data != nil {
		t.Fatalf("null payload should decode to nil, got %v / %v", s.Data, err)
	}
}

func TestSeedDataset(t *testing.T) {
	seed := Seed()
	if len(seed) != 2 || seed[0].ID != 1 || seed[1].ID != 2 {
		t.Fatalf("unexpected seed %+v", seed)
	}
	for _, p := range seed {
		if p.CompletedCount() != 0 || len(p.Sections) != 5 {
			t.Fatalf("seed project %d not pristine", p.ID)
		}
	}
	if MaxID(seed) != 2 || Find(seed, 2) != 1 || Find(seed, 5) != -1 {
		t.Fatalf("helpers disagree with seed")
	}
}
