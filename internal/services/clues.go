package services

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

type ClueCategory string

const (
	ClueGender   ClueCategory = "gender"
	ClueYear     ClueCategory = "year"
	ClueCount    ClueCategory = "count"
	ClueSpecific ClueCategory = "specific"
)

type ClueDifficulty string

const (
	DifficultyEasy   ClueDifficulty = "easy"
	DifficultyMedium ClueDifficulty = "medium"
	DifficultyHard   ClueDifficulty = "hard"
)

// Clue is one party-time hint about the assignment structure. Content is
// deterministic over the draw and participant data; ordering and sampling are
// not.
type Clue struct {
	Text       string         `json:"text"`
	Category   ClueCategory   `json:"category"`
	Difficulty ClueDifficulty `json:"difficulty"`
}

// clueCandidate carries filter-only metadata that does not belong on the
// public Clue shape.
type clueCandidate struct {
	Clue
	// barePopulationCount marks a clue that states little more than the group
	// size, which tiny groups can invert directly.
	barePopulationCount bool
}

// DefaultClueTarget is the number of clues returned when the caller does not
// configure a count.
const DefaultClueTarget = 10

// Obviousness thresholds. The values are heuristic tuning preserved from the
// original game, not derived bounds; the filter errs toward rejecting safe
// clues rather than leaking deducible ones.
const (
	exclusionConcentrationMin = 0.50
	genderDominanceThreshold  = 0.80
	smallGenderPopulation     = 4
	smallPopulation           = 4
	minYearClueUniqueYears    = 3
	minNameCluePopulation     = 5
)

// drawnPair is a pairing resolved to full participant records.
type drawnPair struct {
	giver    *Participant
	receiver *Participant
}

type ClueService struct {
	codec  *AssignmentCodec
	target int
	rng    *rand.Rand
}

func NewClueService(codec *AssignmentCodec, target int) *ClueService {
	if target <= 0 {
		target = DefaultClueTarget
	}
	return &ClueService{
		codec:  codec,
		target: target,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the randomness source used for shuffling and sampling.
func (s *ClueService) WithRand(rng *rand.Rand) {
	s.rng = rng
}

// GenerateClues decodes the assignment token and derives up to target clue
// statements that hint at draw structure without identifying any pairing.
// Candidates come from three generators, pass the obviousness filter, are
// shuffled, and are backfilled from a second tier of safer statistics when
// the pool runs short. A shorter-than-target result is not an error; a bad
// token is.
func (s *ClueService) GenerateClues(token string, participants []*Participant, exclusions []*Exclusion) ([]Clue, error) {
	pairings, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}
	pairs := make([]drawnPair, 0, len(pairings))
	for _, pr := range pairings {
		g, r := byID[pr.GiverID], byID[pr.ReceiverID]
		if g != nil && r != nil {
			pairs = append(pairs, drawnPair{giver: g, receiver: r})
		}
	}
	analysis := AnalyzePopulation(participants, exclusions)

	candidates := s.genderPatternClues(pairs)
	candidates = append(candidates, s.yearPatternClues(pairs)...)
	candidates = append(candidates, s.specificPatternClues(pairs)...)

	safe := filterObvious(candidates, analysis)
	s.rng.Shuffle(len(safe), func(i, j int) { safe[i], safe[j] = safe[j], safe[i] })

	if len(safe) < s.target {
		backfill := filterObvious(s.backfillClues(pairs, participants, analysis), analysis)
		safe = append(safe, backfill...)
	}

	out := make([]Clue, 0, s.target)
	seen := make(map[string]bool, len(safe))
	for _, c := range safe {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		out = append(out, c.Clue)
		if len(out) == s.target {
			break
		}
	}
	return out, nil
}

// genderPatternClues tallies the four directed gender-pair counts across the
// draw. Zero counts are more informative than positive ones, so they land at
// medium difficulty.
func (s *ClueService) genderPatternClues(pairs []drawnPair) []clueCandidate {
	if len(pairs) == 0 {
		return nil
	}
	counts := map[[2]string]int{}
	for _, pr := range pairs {
		g, r := pr.giver.Gender, pr.receiver.Gender
		if (g == GenderMale || g == GenderFemale) && (r == GenderMale || r == GenderFemale) {
			counts[[2]string{g, r}]++
		}
	}
	combos := [][2]string{
		{GenderMale, GenderFemale},
		{GenderFemale, GenderMale},
		{GenderMale, GenderMale},
		{GenderFemale, GenderFemale},
	}
	out := make([]clueCandidate, 0, len(combos))
	for _, combo := range combos {
		n := counts[combo]
		var text string
		difficulty := DifficultyEasy
		switch {
		case n == 0:
			text = fmt.Sprintf("No %s is giving a gift to a %s this year.", genderNoun(combo[0], false), genderNoun(combo[1], false))
			difficulty = DifficultyMedium
		case n == 1:
			text = fmt.Sprintf("Exactly one %s is giving a gift to a %s.", genderNoun(combo[0], false), genderNoun(combo[1], false))
		default:
			text = fmt.Sprintf("%d %s are giving gifts to %s.", n, genderNoun(combo[0], true), genderNoun(combo[1], true))
		}
		out = append(out, clueCandidate{Clue: Clue{Text: text, Category: ClueGender, Difficulty: difficulty}})
	}
	return out
}

func genderNoun(gender string, plural bool) string {
	switch gender {
	case GenderMale:
		if plural {
			return "men"
		}
		return "man"
	case GenderFemale:
		if plural {
			return "women"
		}
		return "woman"
	}
	if plural {
		return "people"
	}
	return "person"
}

// yearPatternClues speaks about arrival-year structure: what the unique
// earliest/latest arrivals give and receive (by year only, never by name),
// plus same-year and cross-direction counts once the group spans at least
// three distinct years.
func (s *ClueService) yearPatternClues(pairs []drawnPair) []clueCandidate {
	if len(pairs) == 0 {
		return nil
	}
	var out []clueCandidate

	years := map[int]bool{}
	minYear, maxYear := pairs[0].giver.ArrivalYear, pairs[0].giver.ArrivalYear
	minCount, maxCount := 0, 0
	var earliest, latest *Participant
	for _, pr := range pairs {
		years[pr.giver.ArrivalYear] = true
		years[pr.receiver.ArrivalYear] = true
		y := pr.giver.ArrivalYear
		if y < minYear {
			minYear, minCount, earliest = y, 0, nil
		}
		if y == minYear {
			minCount++
			earliest = pr.giver
		}
		if y > maxYear {
			maxYear, maxCount, latest = y, 0, nil
		}
		if y == maxYear {
			maxCount++
			latest = pr.giver
		}
	}

	if minYear != maxYear {
		if minCount == 1 && earliest != nil {
			if recv, ok := receiverOf(pairs, earliest); ok {
				out = append(out, clueCandidate{Clue: Clue{
					Text:       fmt.Sprintf("The earliest arrival (%d) is giving a gift to someone who arrived in %d.", minYear, recv.ArrivalYear),
					Category:   ClueYear,
					Difficulty: DifficultyMedium,
				}})
			}
			if giver, ok := giverTo(pairs, earliest); ok {
				out = append(out, clueCandidate{Clue: Clue{
					Text:       fmt.Sprintf("The earliest arrival (%d) is receiving a gift from someone who arrived in %d.", minYear, giver.ArrivalYear),
					Category:   ClueYear,
					Difficulty: DifficultyMedium,
				}})
			}
		}
		if maxCount == 1 && latest != nil {
			if recv, ok := receiverOf(pairs, latest); ok {
				out = append(out, clueCandidate{Clue: Clue{
					Text:       fmt.Sprintf("The most recent arrival (%d) is giving a gift to someone who arrived in %d.", maxYear, recv.ArrivalYear),
					Category:   ClueYear,
					Difficulty: DifficultyMedium,
				}})
			}
			if giver, ok := giverTo(pairs, latest); ok {
				out = append(out, clueCandidate{Clue: Clue{
					Text:       fmt.Sprintf("The most recent arrival (%d) is receiving a gift from someone who arrived in %d.", maxYear, giver.ArrivalYear),
					Category:   ClueYear,
					Difficulty: DifficultyMedium,
				}})
			}
		}
	}

	// Same/cross-year counts are near-reveals when the group only spans one
	// or two years, so they require three distinct years among endpoints.
	if len(years) >= minYearClueUniqueYears {
		sameYear, olderToNewer, newerToOlder := 0, 0, 0
		for _, pr := range pairs {
			switch {
			case pr.giver.ArrivalYear == pr.receiver.ArrivalYear:
				sameYear++
			case pr.giver.ArrivalYear < pr.receiver.ArrivalYear:
				olderToNewer++
			default:
				newerToOlder++
			}
		}
		out = append(out, countClue(sameYear,
			"No gift stays within a single arrival year.",
			"Exactly one gift stays within a single arrival year.",
			"%d gifts stay within a single arrival year.", ClueYear))
		out = append(out, countClue(olderToNewer,
			"No gift goes from an earlier arrival to a later one.",
			"Exactly one gift goes from an earlier arrival to a later one.",
			"%d gifts go from earlier arrivals to later ones.", ClueYear))
		out = append(out, countClue(newerToOlder,
			"No gift goes from a later arrival to an earlier one.",
			"Exactly one gift goes from a later arrival to an earlier one.",
			"%d gifts go from later arrivals to earlier ones.", ClueYear))
	}
	return out
}

func countClue(n int, zero, one, many string, category ClueCategory) clueCandidate {
	switch {
	case n == 0:
		return clueCandidate{Clue: Clue{Text: zero, Category: category, Difficulty: DifficultyMedium}}
	case n == 1:
		return clueCandidate{Clue: Clue{Text: one, Category: category, Difficulty: DifficultyEasy}}
	default:
		return clueCandidate{Clue: Clue{Text: fmt.Sprintf(many, n), Category: category, Difficulty: DifficultyEasy}}
	}
}

func receiverOf(pairs []drawnPair, giver *Participant) (*Participant, bool) {
	for _, pr := range pairs {
		if pr.giver.ID == giver.ID {
			return pr.receiver, true
		}
	}
	return nil, false
}

func giverTo(pairs []drawnPair, receiver *Participant) (*Participant, bool) {
	for _, pr := range pairs {
		if pr.receiver.ID == receiver.ID {
			return pr.giver, true
		}
	}
	return nil, false
}

// specificPatternClues samples a single cross-year pairing and states its
// year gap, and reports whether any gift touches the middle of the arrival
// range when the group spans at least three distinct years.
func (s *ClueService) specificPatternClues(pairs []drawnPair) []clueCandidate {
	if len(pairs) == 0 {
		return nil
	}
	var out []clueCandidate

	giverYears, receiverYears := map[int]bool{}, map[int]bool{}
	allYears := map[int]bool{}
	var cross []drawnPair
	for _, pr := range pairs {
		giverYears[pr.giver.ArrivalYear] = true
		receiverYears[pr.receiver.ArrivalYear] = true
		allYears[pr.giver.ArrivalYear] = true
		allYears[pr.receiver.ArrivalYear] = true
		if pr.giver.ArrivalYear != pr.receiver.ArrivalYear {
			cross = append(cross, pr)
		}
	}

	if len(giverYears) >= 2 && len(receiverYears) >= 2 && len(cross) > 0 {
		pick := cross[s.rng.Intn(len(cross))]
		gap := pick.giver.ArrivalYear - pick.receiver.ArrivalYear
		if gap < 0 {
			gap = -gap
		}
		// A lone cross-year pairing would be pinned down by its gap, so the
		// clue only fires when more than one candidate exists.
		if gap > 1 && len(cross) > 1 {
			out = append(out, clueCandidate{Clue: Clue{
				Text:       fmt.Sprintf("One of the gifts travels across a %d-year arrival gap.", gap),
				Category:   ClueSpecific,
				Difficulty: DifficultyHard,
			}})
		}
	}

	if len(allYears) >= 3 {
		sorted := make([]int, 0, len(allYears))
		for y := range allYears {
			sorted = append(sorted, y)
		}
		sort.Ints(sorted)
		middle := map[int]bool{}
		for _, y := range sorted[1 : len(sorted)-1] {
			middle[y] = true
		}
		touched := 0
		for _, pr := range pairs {
			if middle[pr.giver.ArrivalYear] || middle[pr.receiver.ArrivalYear] {
				touched++
			}
		}
		text := "Every gift involves only the earliest or latest arrivals."
		if touched > 0 {
			text = "At least one gift involves someone from the middle of the arrival-year range."
		}
		out = append(out, clueCandidate{Clue: Clue{Text: text, Category: ClueSpecific, Difficulty: DifficultyMedium}})
	}
	return out
}

// backfillClues is the second tier: statistics expected to stay safe
// regardless of demographic skew, gated only by population-size thresholds.
// Candidates still pass back through the obviousness filter before use.
func (s *ClueService) backfillClues(pairs []drawnPair, participants []*Participant, analysis *PopulationAnalysis) []clueCandidate {
	if len(pairs) == 0 {
		return nil
	}
	var out []clueCandidate

	crossGender := 0
	for _, pr := range pairs {
		if pr.giver.Gender != pr.receiver.Gender {
			crossGender++
		}
	}
	out = append(out, clueCandidate{Clue: Clue{
		Text:       fmt.Sprintf("%d of the gifts cross gender lines.", crossGender),
		Category:   ClueCount,
		Difficulty: DifficultyEasy,
	}})

	gapSum := 0
	for _, pr := range pairs {
		gap := pr.giver.ArrivalYear - pr.receiver.ArrivalYear
		if gap < 0 {
			gap = -gap
		}
		gapSum += gap
	}
	out = append(out, clueCandidate{Clue: Clue{
		Text:       fmt.Sprintf("Givers and receivers arrived an average of %.1f years apart.", float64(gapSum)/float64(len(pairs))),
		Category:   ClueYear,
		Difficulty: DifficultyHard,
	}})

	median := medianArrivalYear(participants)
	veterans := 0
	for _, pr := range pairs {
		if pr.giver.ArrivalYear < median && pr.receiver.ArrivalYear >= median {
			veterans++
		}
	}
	out = append(out, clueCandidate{Clue: Clue{
		Text:       fmt.Sprintf("%d gifts go from veterans to people who arrived in the median year or later.", veterans),
		Category:   ClueYear,
		Difficulty: DifficultyMedium,
	}})

	if len(participants) >= minNameCluePopulation {
		alpha, longer := 0, 0
		for _, pr := range pairs {
			if pr.giver.Name < pr.receiver.Name {
				alpha++
			}
			if len(pr.giver.Name) > len(pr.receiver.Name) {
				longer++
			}
		}
		out = append(out, clueCandidate{Clue: Clue{
			Text:       fmt.Sprintf("In %d of the pairings, the giver's name comes alphabetically before the receiver's.", alpha),
			Category:   ClueSpecific,
			Difficulty: DifficultyHard,
		}})
		out = append(out, clueCandidate{Clue: Clue{
			Text:       fmt.Sprintf("In %d of the pairings, the giver has the longer name.", longer),
			Category:   ClueSpecific,
			Difficulty: DifficultyHard,
		}})
	}

	sharedDomain := 0
	for _, pr := range pairs {
		g, r := emailDomain(pr.giver.Email), emailDomain(pr.receiver.Email)
		if g != "" && g == r {
			sharedDomain++
		}
	}
	out = append(out, clueCandidate{Clue: Clue{
		Text:       fmt.Sprintf("%d pairings share an email domain.", sharedDomain),
		Category:   ClueCount,
		Difficulty: DifficultyMedium,
	}})

	vowelTotal := 0
	for _, p := range participants {
		vowelTotal += vowelCount(p.Name)
	}
	if len(participants) > 0 {
		out = append(out, clueCandidate{Clue: Clue{
			Text:       fmt.Sprintf("Participant names average %.1f vowels.", float64(vowelTotal)/float64(len(participants))),
			Category:   ClueSpecific,
			Difficulty: DifficultyHard,
		}})
	}

	maxYear := participants[0].ArrivalYear
	for _, p := range participants {
		if p.ArrivalYear > maxYear {
			maxYear = p.ArrivalYear
		}
	}
	newestReceivers := 0
	for _, pr := range pairs {
		if pr.receiver.ArrivalYear == maxYear && pr.giver.ArrivalYear < maxYear {
			newestReceivers++
		}
	}
	out = append(out, clueCandidate{Clue: Clue{
		Text:       fmt.Sprintf("%d of the newest arrivals receive their gift from an earlier arrival.", newestReceivers),
		Category:   ClueYear,
		Difficulty: DifficultyMedium,
	}})

	out = append(out, clueCandidate{
		Clue: Clue{
			Text:       fmt.Sprintf("There are %d people in this exchange.", analysis.Total),
			Category:   ClueCount,
			Difficulty: DifficultyEasy,
		},
		barePopulationCount: true,
	})
	return out
}

func medianArrivalYear(participants []*Participant) int {
	if len(participants) == 0 {
		return 0
	}
	years := make([]int, 0, len(participants))
	for _, p := range participants {
		years = append(years, p.ArrivalYear)
	}
	sort.Ints(years)
	return years[len(years)/2]
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func vowelCount(name string) int {
	n := 0
	for _, r := range strings.ToLower(name) {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			n++
		}
	}
	return n
}

func filterObvious(candidates []clueCandidate, analysis *PopulationAnalysis) []clueCandidate {
	out := make([]clueCandidate, 0, len(candidates))
	for _, c := range candidates {
		if isObvious(c, analysis) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// isObvious decides whether a clue can be trivially inverted from public
// population facts. False positives are acceptable; leaking is not.
func isObvious(c clueCandidate, a *PopulationAnalysis) bool {
	switch c.Category {
	case ClueYear:
		// When one year dominates and the known exclusions cluster inside it,
		// same/cross-year phrasing narrows pairings to the outliers.
		if a.YearSkewed && a.ExclusionCount > 0 &&
			float64(a.ModalYearExclusions)/float64(a.ExclusionCount) >= exclusionConcentrationMin {
			return true
		}
		if a.UniqueYears <= 2 {
			return true
		}
	case ClueGender:
		dominant := a.MaleCount
		if a.FemaleCount > dominant {
			dominant = a.FemaleCount
		}
		if a.Total > 0 && float64(dominant)/float64(a.Total) > genderDominanceThreshold {
			return true
		}
		if a.ExclusionCount > 0 && a.MaleCount+a.FemaleCount <= smallGenderPopulation {
			return true
		}
	case ClueCount:
		if c.barePopulationCount && a.Total <= smallPopulation {
			return true
		}
	}
	return false
}
