package pick

// NoDrafter is returned by NextDrafter when no turn exists yet.
const NoDrafter = 0

// NextDrafter returns the 1-indexed draft position that makes pickNumber in a
// snake draft with n participants: 1..n on even rounds, n..1 on odd rounds.
// pickNumber 0 is the "no turn yet" sentinel and yields NoDrafter.
func NextDrafter(pickNumber, n int) int {
	if pickNumber <= 0 || n <= 0 {
		return NoDrafter
	}

	round := (pickNumber - 1) / n
	offset := (pickNumber - 1) % n
	if round%2 == 0 {
		return offset + 1
	}
	return n - offset
}

// TotalPicks is the number of picks after which a draft completes.
func TotalPicks(rounds, n int) int {
	return rounds * n
}

// Round returns the 1-indexed round that pickNumber belongs to.
func Round(pickNumber, n int) int {
	if pickNumber <= 0 || n <= 0 {
		return 0
	}
	return (pickNumber-1)/n + 1
}
