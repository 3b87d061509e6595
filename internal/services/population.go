package services

// yearSkewThreshold marks a population where one arrival year dominates.
// Preserved from the original tuning; see also the clue filter thresholds.
const yearSkewThreshold = 0.70

// PopulationAnalysis is a read-only aggregate snapshot of a participant set
// and its exclusions, recomputed fresh on every call. The clue filter reasons
// over it to decide which statistics are safe to reveal.
type PopulationAnalysis struct {
	Total          int
	YearCounts     map[int]int
	MaleCount      int
	FemaleCount    int
	ModalYear      int
	ModalYearCount int
	UniqueYears    int
	YearSkewed     bool
	GenderBalanced bool
	ExclusionCount int
	// ModalYearExclusions counts exclusions whose both members arrived in the
	// modal year. When most exclusions sit inside a dominant year, year-based
	// clues become deducible from public exclusion knowledge.
	ModalYearExclusions int
}

// AnalyzePopulation computes the aggregate facts the clue filter needs. Pure
// function: no randomness, no I/O. Ties for the modal year resolve to
// whichever year is encountered first, which only affects phrasing of one
// optional clue.
func AnalyzePopulation(participants []*Participant, exclusions []*Exclusion) *PopulationAnalysis {
	a := &PopulationAnalysis{
		Total:      len(participants),
		YearCounts: map[int]int{},
	}
	byName := make(map[string]*Participant, len(participants))
	for _, p := range participants {
		a.YearCounts[p.ArrivalYear]++
		switch p.Gender {
		case GenderMale:
			a.MaleCount++
		case GenderFemale:
			a.FemaleCount++
		}
		byName[p.Name] = p
	}
	for year, n := range a.YearCounts {
		if n > a.ModalYearCount {
			a.ModalYear = year
			a.ModalYearCount = n
		}
	}
	a.UniqueYears = len(a.YearCounts)
	if a.Total > 0 {
		a.YearSkewed = float64(a.ModalYearCount)/float64(a.Total) > yearSkewThreshold
	}
	diff := a.MaleCount - a.FemaleCount
	if diff < 0 {
		diff = -diff
	}
	a.GenderBalanced = diff <= 1

	a.ExclusionCount = len(exclusions)
	for _, ex := range exclusions {
		pa, pb := byName[ex.NameA], byName[ex.NameB]
		if pa != nil && pb != nil && pa.ArrivalYear == a.ModalYear && pb.ArrivalYear == a.ModalYear {
			a.ModalYearExclusions++
		}
	}
	return a
}
