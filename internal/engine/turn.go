package engine

// NextTurn advances the snake order after a recorded pick. At either
// end the index clamps and the direction flips, so the edge slots each
// take two consecutive turns at every reversal. That double turn is
// the intended draft behavior, not an off-by-one: for four teams the
// sequence of turn holders is 0,1,2,3,3,2,1,0,0,1,...
func NextTurn(current, direction, teamCount int) (int, int) {
	next := current + direction
	if next >= teamCount {
		return teamCount - 1, -1
	}
	if next < 0 {
		return 0, 1
	}
	return next, direction
}
