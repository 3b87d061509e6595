package services

import "testing"

func TestAnalyzePopulationSkewedYears(t *testing.T) {
	participants := testParticipants(
		Participant{ID: "p1", Name: "Ada", Gender: GenderFemale, ArrivalYear: 2015},
		Participant{ID: "p2", Name: "Ben", Gender: GenderMale, ArrivalYear: 2015},
		Participant{ID: "p3", Name: "Cleo", Gender: GenderFemale, ArrivalYear: 2015},
		Participant{ID: "p4", Name: "Dev", Gender: GenderMale, ArrivalYear: 2015},
		Participant{ID: "p5", Name: "Elin", Gender: GenderFemale, ArrivalYear: 2021},
	)
	a := AnalyzePopulation(participants, nil)
	// 4/5 = 0.8 > 0.7
	if !a.YearSkewed {
		t.Fatalf("expected skewed year distribution: %+v", a)
	}
	if a.UniqueYears != 2 {
		t.Fatalf("UniqueYears=%d, want 2", a.UniqueYears)
	}
	if a.ModalYear != 2015 || a.ModalYearCount != 4 {
		t.Fatalf("modal year %d (%d), want 2015 (4)", a.ModalYear, a.ModalYearCount)
	}
	if !a.GenderBalanced {
		t.Fatalf("3 women vs 2 men should count as balanced (male=%d female=%d)", a.MaleCount, a.FemaleCount)
	}
}

func TestAnalyzePopulationBalance(t *testing.T) {
	participants := testParticipants(
		Participant{ID: "p1", Name: "Ada", Gender: GenderFemale, ArrivalYear: 2018},
		Participant{ID: "p2", Name: "Ben", Gender: GenderMale, ArrivalYear: 2019},
		Participant{ID: "p3", Name: "Cleo", Gender: GenderFemale, ArrivalYear: 2020},
		Participant{ID: "p4", Name: "Dev", Gender: GenderOther, ArrivalYear: 2021},
	)
	a := AnalyzePopulation(participants, nil)
	if !a.GenderBalanced {
		t.Fatalf("|2-1| <= 1 should be balanced")
	}
	if a.YearSkewed {
		t.Fatalf("uniform years should not be skewed")
	}
	if a.MaleCount != 1 || a.FemaleCount != 2 {
		t.Fatalf("gender counts male=%d female=%d, want 1/2", a.MaleCount, a.FemaleCount)
	}
	if a.UniqueYears != 4 {
		t.Fatalf("UniqueYears=%d, want 4", a.UniqueYears)
	}
}

func TestAnalyzePopulationModalYearExclusions(t *testing.T) {
	participants := testParticipants(
		Participant{ID: "p1", Name: "Ada", Gender: GenderFemale, ArrivalYear: 2020},
		Participant{ID: "p2", Name: "Ben", Gender: GenderMale, ArrivalYear: 2020},
		Participant{ID: "p3", Name: "Cleo", Gender: GenderFemale, ArrivalYear: 2020},
		Participant{ID: "p4", Name: "Dev", Gender: GenderMale, ArrivalYear: 2017},
	)
	exclusions := []*Exclusion{
		{NameA: "Ada", NameB: "Ben"},
		{NameA: "Ada", NameB: "Dev"},
	}
	a := AnalyzePopulation(participants, exclusions)
	if a.ExclusionCount != 2 {
		t.Fatalf("ExclusionCount=%d, want 2", a.ExclusionCount)
	}
	// Only Ada-Ben sits fully inside the modal year 2020.
	if a.ModalYearExclusions != 1 {
		t.Fatalf("ModalYearExclusions=%d, want 1", a.ModalYearExclusions)
	}
}

func TestAnalyzePopulationEmpty(t *testing.T) {
	a := AnalyzePopulation(nil, nil)
	if a.Total != 0 || a.YearSkewed || a.UniqueYears != 0 {
		t.Fatalf("unexpected analysis for empty population: %+v", a)
	}
}
