package game

// WinningTriples are the index combinations that win the round.
var WinningTriples = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// WinningLine scans every triple and returns the first one fully held by mark.
func WinningLine(cells [Size]PlayerMark, mark PlayerMark) ([3]int, bool) {
	if !mark.Valid() {
		return [3]int{}, false
	}
	for _, triple := range WinningTriples {
		if cells[triple[0]] == mark && cells[triple[1]] == mark && cells[triple[2]] == mark {
			return triple, true
		}
	}
	return [3]int{}, false
}
