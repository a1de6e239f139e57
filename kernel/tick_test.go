package kernel

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func straightLineGrid(width int) Grid {
	row := make([]Cell, width)
	for i := range row {
		row[i] = CellEmpty
	}
	return Grid{Cells: [][]Cell{row}}
}

func alwaysMove(m Move) Program {
	return Program{Rules: []Rule{{NextMove: m, NextState: StateA}}}
}

func TestEvaluateWalkToBerryWin(t *testing.T) {
	Convey("Given a 1x3 corridor, Pac-Man at (0,0) and a berry at (0,2)", t, func() {
		level := &Level{
			Grid: straightLineGrid(3),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "b1", Kind: KindBerry, Row: 0, Col: 2},
			},
			GhostProgram: alwaysMove(MoveWait),
			MoveLimit:    10,
		}

		Convey("A program that always moves Right wins in exactly 2 ticks", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(details.Outcome, ShouldEqual, Success)
			So(len(details.Steps), ShouldEqual, 2)
		})
	})
}

func TestEvaluateWalkIntoGhostLose(t *testing.T) {
	Convey("Given a 1x3 corridor with a ghost parked at (0,2) and no berry on the level at all", t, func() {
		level := &Level{
			Grid: straightLineGrid(3),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "gh", Kind: KindGhost, Row: 0, Col: 2},
			},
			GhostProgram: alwaysMove(MoveWait),
			MoveLimit:    10,
		}

		Convey("Pac-Man always moving Right dies entering (0,2) on tick 2", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(details.Outcome, ShouldEqual, Fail)
			So(len(details.Steps), ShouldEqual, 2)
			last := details.Steps[1].Objects
			for _, o := range last {
				if o.Kind == KindPacman {
					So(o.State, ShouldEqual, DiesAtEnd)
				}
			}
		})
	})
}

func TestEvaluateSwapDeath(t *testing.T) {
	Convey("Given a 1x2 grid, Pac-Man at (0,0) moving Right, a ghost at (0,1) moving Left, berry absent", t, func() {
		level := &Level{
			Grid: straightLineGrid(2),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "gh", Kind: KindGhost, Row: 0, Col: 1},
			},
			GhostProgram: alwaysMove(MoveLeft),
			MoveLimit:    10,
		}

		Convey("Passing through each other kills the un-empowered Pac-Man in the middle", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(details.Outcome, ShouldEqual, Fail)
			So(len(details.Steps), ShouldEqual, 1)
			for _, o := range details.Steps[0].Objects {
				if o.Kind == KindPacman {
					So(o.State, ShouldEqual, DiesInMiddle)
				}
			}
		})
	})
}

func TestEvaluateEmpoweredSwapNoSameTickEmpowerment(t *testing.T) {
	Convey("Given a 1x3 grid, Pac-Man at (0,0), berry at (0,1), ghost at (0,2), closing on each other", t, func() {
		level := &Level{
			Grid: straightLineGrid(3),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "b1", Kind: KindBerry, Row: 0, Col: 1},
				{ID: "gh", Kind: KindGhost, Row: 0, Col: 2},
			},
			GhostProgram: alwaysMove(MoveLeft),
			MoveLimit:    10,
		}

		Convey("Eating the berry this tick does not empower Pac-Man against this tick's collision", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(details.Outcome, ShouldEqual, Fail)
			So(len(details.Steps), ShouldEqual, 1)
			for _, o := range details.Steps[0].Objects {
				if o.Kind == KindPacman {
					So(o.State, ShouldEqual, DiesAtEnd)
				}
			}
		})
	})
}

func TestEvaluateTrueEmpowermentAfterBerryEaten(t *testing.T) {
	Convey("Given a berry eaten on tick 1 and a ghost that only reaches Pac-Man on tick 2", t, func() {
		level := &Level{
			Grid: straightLineGrid(4),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "b1", Kind: KindBerry, Row: 0, Col: 1},
				{ID: "gh", Kind: KindGhost, Row: 0, Col: 3},
			},
			GhostProgram: alwaysMove(MoveLeft),
			MoveLimit:    10,
		}

		Convey("Pac-Man survives the tick-2 swap because berry_taken was already true going in", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(details.Outcome, ShouldEqual, Success)
			So(len(details.Steps), ShouldEqual, 2)
			for _, o := range details.Steps[1].Objects {
				if o.Kind == KindGhost {
					So(o.State, ShouldEqual, DiesInMiddle)
				}
			}
		})
	})
}

func TestEvaluateOutOfMoves(t *testing.T) {
	Convey("Given a loop program and a berry it can never reach, with a move limit of 5", t, func() {
		level := &Level{
			Grid: straightLineGrid(4),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "b1", Kind: KindBerry, Row: 0, Col: 3},
			},
			GhostProgram: alwaysMove(MoveWait),
			MoveLimit:    5,
		}

		Convey("The submission exhausts its move limit with exactly 5 steps recorded", func() {
			details := Evaluate(level, alwaysMove(MoveWait), level.MoveLimit)
			So(details.Outcome, ShouldEqual, OutOfMoves)
			So(len(details.Steps), ShouldEqual, 5)
		})
	})
}

func TestEvaluatePreservesInitialState(t *testing.T) {
	Convey("Given a level with a Pac-Man and a berry", t, func() {
		level := &Level{
			Grid: straightLineGrid(3),
			Objects: []Object{
				{ID: "pm", Kind: KindPacman, Row: 0, Col: 0},
				{ID: "b1", Kind: KindBerry, Row: 0, Col: 2},
			},
			GhostProgram: alwaysMove(MoveWait),
			MoveLimit:    10,
		}

		Convey("Evaluate reports the pre-tick object positions as InitialState, unmutated by evaluation", func() {
			details := Evaluate(level, alwaysMove(MoveRight), level.MoveLimit)
			So(len(details.InitialState.Objects), ShouldEqual, 2)
			So(details.InitialState.Objects[0].Col, ShouldEqual, 0)
			So(level.Objects[0].Col, ShouldEqual, 0)
		})
	})
}

func TestLevelValidate(t *testing.T) {
	Convey("Given a level with two Pac-Man objects", t, func() {
		level := &Level{
			Objects: []Object{
				{Kind: KindPacman},
				{Kind: KindPacman},
			},
		}

		Convey("Validate rejects it", func() {
			So(level.Validate(), ShouldEqual, ErrMultiplePacmen)
		})
	})

	Convey("Given a level with two berries", t, func() {
		level := &Level{
			Objects: []Object{
				{Kind: KindBerry},
				{Kind: KindBerry},
			},
		}

		Convey("Validate rejects it", func() {
			So(level.Validate(), ShouldEqual, ErrMultipleBerries)
		})
	})

	Convey("Given a well-formed level", t, func() {
		level := &Level{
			Objects: []Object{
				{Kind: KindPacman},
				{Kind: KindBerry},
				{Kind: KindGhost},
			},
		}

		Convey("Validate accepts it", func() {
			So(level.Validate(), ShouldBeNil)
		})
	})
}
