package kernel

// Neighborhood is the four cardinal cells observed from an agent's
// position, collapsed to a single RuleCell each per the max-kind rule.
type Neighborhood struct {
	Up, Down, Left, Right RuleCell
}

// maxKind returns the greater of two kinds under Berry < Ghost < Pacman.
func maxKind(a, b Kind) Kind {
	if b > a {
		return b
	}
	return a
}

// observe collapses the grid plus live objects at (row, col) into the
// RuleCell a rule's directional filter compares against. Out-of-bounds
// reads are absorbed as Wall, same as Grid.At.
func observe(grid Grid, objects []Object, row, col int) RuleCell {
	var occupant *Kind
	for i := range objects {
		o := &objects[i]
		if o.Row == row && o.Col == col {
			if occupant == nil {
				k := o.Kind
				occupant = &k
			} else {
				k := maxKind(*occupant, o.Kind)
				occupant = &k
			}
		}
	}
	if occupant != nil {
		switch *occupant {
		case KindPacman:
			return RuleCellPacman
		case KindGhost:
			return RuleCellGhost
		case KindBerry:
			return RuleCellBerry
		}
	}
	if grid.At(row, col) == CellWall {
		return RuleCellWall
	}
	return RuleCellEmpty
}

// neighborhoodAt computes the Neighborhood observed from (row, col).
func neighborhoodAt(grid Grid, objects []Object, row, col int) Neighborhood {
	return Neighborhood{
		Up:    observe(grid, objects, row-1, col),
		Down:  observe(grid, objects, row+1, col),
		Left:  observe(grid, objects, row, col-1),
		Right: observe(grid, objects, row, col+1),
	}
}

// berryTaken is the level-global predicate: no Berry object currently
// exists among the live objects.
func berryTaken(objects []Object) bool {
	for i := range objects {
		if objects[i].Kind == KindBerry {
			return false
		}
	}
	return true
}

// match walks a program's rules in order and returns the first match's
// action, or (state, Wait) if none match. match is pure: it never mutates
// program, objects, or the grid.
func match(program Program, state RuleState, taken bool, n Neighborhood) (RuleState, Move) {
	for _, rule := range program.Rules {
		if rule.CurrentState != nil && *rule.CurrentState != state {
			continue
		}
		if rule.Up != nil && *rule.Up != n.Up {
			continue
		}
		if rule.Down != nil && *rule.Down != n.Down {
			continue
		}
		if rule.Left != nil && *rule.Left != n.Left {
			continue
		}
		if rule.Right != nil && *rule.Right != n.Right {
			continue
		}
		if rule.Berry != nil {
			wantTaken := *rule.Berry == BerryTaken
			if wantTaken != taken {
				continue
			}
		}
		return rule.NextState, rule.NextMove
	}
	return state, MoveWait
}
