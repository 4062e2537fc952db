package brackets

// NextRound pairs the winners of a resolved cohort, in the order given, into the matches of
// the following round. An odd winner out gets a finished bye match.
func NextRound(winners []int, round int, phase string) []*BracketMatch {
	slots := make([]*int, 0, len(winners)+1)
	for _, w := range winners {
		slots = append(slots, intPtr(w))
	}
	if len(slots)%2 == 1 {
		slots = append(slots, nil)
	}
	return pairSlots(slots, round+1, phase)
}
