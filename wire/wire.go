// Package wire defines the transport-independent, camelCase JSON contract
// for levels, programs, and submission results, along with conversions
// to and from the kernel's internal types. Nothing in this package runs
// simulation logic; it only translates.
package wire

import (
	"fmt"

	"pacjudge/kernel"
)

// RuleState is the wire spelling of kernel.RuleState: single uppercase
// letters A through H.
type RuleState string

const (
	StateA RuleState = "A"
	StateB RuleState = "B"
	StateC RuleState = "C"
	StateD RuleState = "D"
	StateE RuleState = "E"
	StateF RuleState = "F"
	StateG RuleState = "G"
	StateH RuleState = "H"
)

var ruleStateToKernel = map[RuleState]kernel.RuleState{
	StateA: kernel.StateA, StateB: kernel.StateB, StateC: kernel.StateC, StateD: kernel.StateD,
	StateE: kernel.StateE, StateF: kernel.StateF, StateG: kernel.StateG, StateH: kernel.StateH,
}

var ruleStateFromKernel = map[kernel.RuleState]RuleState{
	kernel.StateA: StateA, kernel.StateB: StateB, kernel.StateC: StateC, kernel.StateD: StateD,
	kernel.StateE: StateE, kernel.StateF: StateF, kernel.StateG: StateG, kernel.StateH: StateH,
}

// RuleCell is the wire spelling of kernel.RuleCell.
type RuleCell string

const (
	RuleCellWall   RuleCell = "wall"
	RuleCellEmpty  RuleCell = "empty"
	RuleCellGhost  RuleCell = "ghost"
	RuleCellBerry  RuleCell = "berry"
	RuleCellPacman RuleCell = "pacman"
)

var ruleCellToKernel = map[RuleCell]kernel.RuleCell{
	RuleCellWall: kernel.RuleCellWall, RuleCellEmpty: kernel.RuleCellEmpty, RuleCellGhost: kernel.RuleCellGhost,
	RuleCellBerry: kernel.RuleCellBerry, RuleCellPacman: kernel.RuleCellPacman,
}

var ruleCellFromKernel = map[kernel.RuleCell]RuleCell{
	kernel.RuleCellWall: RuleCellWall, kernel.RuleCellEmpty: RuleCellEmpty, kernel.RuleCellGhost: RuleCellGhost,
	kernel.RuleCellBerry: RuleCellBerry, kernel.RuleCellPacman: RuleCellPacman,
}

// RuleBerry is the wire spelling of kernel.RuleBerry.
type RuleBerry string

const (
	Taken    RuleBerry = "taken"
	NotTaken RuleBerry = "notTaken"
)

var ruleBerryToKernel = map[RuleBerry]kernel.RuleBerry{Taken: kernel.BerryTaken, NotTaken: kernel.BerryNotTaken}
var ruleBerryFromKernel = map[kernel.RuleBerry]RuleBerry{kernel.BerryTaken: Taken, kernel.BerryNotTaken: NotTaken}

// Move is the wire spelling of kernel.Move.
type Move string

const (
	MoveUp    Move = "up"
	MoveDown  Move = "down"
	MoveLeft  Move = "left"
	MoveRight Move = "right"
	MoveWait  Move = "wait"
)

var moveToKernel = map[Move]kernel.Move{
	MoveUp: kernel.MoveUp, MoveDown: kernel.MoveDown, MoveLeft: kernel.MoveLeft,
	MoveRight: kernel.MoveRight, MoveWait: kernel.MoveWait,
}

var moveFromKernel = map[kernel.Move]Move{
	kernel.MoveUp: MoveUp, kernel.MoveDown: MoveDown, kernel.MoveLeft: MoveLeft,
	kernel.MoveRight: MoveRight, kernel.MoveWait: MoveWait,
}

// Kind is the wire spelling of kernel.Kind.
type Kind string

const (
	KindBerry  Kind = "berry"
	KindGhost  Kind = "ghost"
	KindPacman Kind = "pacman"
)

var kindToKernel = map[Kind]kernel.Kind{KindBerry: kernel.KindBerry, KindGhost: kernel.KindGhost, KindPacman: kernel.KindPacman}
var kindFromKernel = map[kernel.Kind]Kind{kernel.KindBerry: KindBerry, kernel.KindGhost: KindGhost, kernel.KindPacman: KindPacman}

// DeathState is the wire spelling of kernel.DeathState.
type DeathState string

const (
	Alive        DeathState = "alive"
	DiesAtEnd    DeathState = "diesAtEnd"
	DiesInMiddle DeathState = "diesInMiddle"
)

var deathToKernel = map[DeathState]kernel.DeathState{
	Alive: kernel.Alive, DiesAtEnd: kernel.DiesAtEnd, DiesInMiddle: kernel.DiesInMiddle,
}

var deathFromKernel = map[kernel.DeathState]DeathState{
	kernel.Alive: Alive, kernel.DiesAtEnd: DiesAtEnd, kernel.DiesInMiddle: DiesInMiddle,
}

// Cell is the wire spelling of kernel.Cell.
type Cell string

const (
	GridWall  Cell = "wall"
	GridEmpty Cell = "empty"
)

var gridCellToKernel = map[Cell]kernel.Cell{GridWall: kernel.CellWall, GridEmpty: kernel.CellEmpty}
var gridCellFromKernel = map[kernel.Cell]Cell{kernel.CellWall: GridWall, kernel.CellEmpty: GridEmpty}

// Outcome is the wire spelling of kernel.Outcome.
type Outcome string

const (
	Success    Outcome = "success"
	Fail       Outcome = "fail"
	OutOfMoves Outcome = "outOfMoves"
)

var outcomeFromKernel = map[kernel.Outcome]Outcome{
	kernel.Success: Success, kernel.Fail: Fail, kernel.OutOfMoves: OutOfMoves,
}

// Rule is one entry of a Program. A missing (nil) filter matches anything.
type Rule struct {
	CurrentState *RuleState `json:"currentState,omitempty"`
	Up           *RuleCell  `json:"up,omitempty"`
	Down         *RuleCell  `json:"down,omitempty"`
	Left         *RuleCell  `json:"left,omitempty"`
	Right        *RuleCell  `json:"right,omitempty"`
	Berry        *RuleBerry `json:"berry,omitempty"`
	NextMove     Move       `json:"nextMove"`
	NextState    RuleState  `json:"nextState"`
}

// Program is an ordered list of rules submitted by a contestant (or
// configured by an admin, for ghosts).
type Program struct {
	Rules []Rule `json:"rules"`
}

// Object is one live entity on the grid.
type Object struct {
	ID           string     `json:"id"`
	Row          int        `json:"row"`
	Col          int        `json:"col"`
	CurrentMove  Move       `json:"currentMove"`
	IntendedMove Move       `json:"intendedMove"`
	State        DeathState `json:"state"`
	Kind         Kind       `json:"kind"`
}

// LevelState is the grid plus the objects on it, with no program or move
// limit attached.
type LevelState struct {
	Cells   [][]Cell `json:"cells"`
	Objects []Object `json:"objects"`
}

// Step is one tick's snapshot of every object that was live at the start
// of that tick.
type Step struct {
	Objects []Object `json:"objects"`
}

// SubmissionDetails is the full record of one evaluated submission.
type SubmissionDetails struct {
	InitialState LevelState `json:"initialState"`
	Steps        []Step     `json:"steps"`
	Outcome      Outcome    `json:"outcome"`
}

// SubmitResponse is the immediate, synchronous reply to POST /submit.
type SubmitResponse string

const (
	ResponseOK                SubmitResponse = "ok"
	ResponseRateLimitExceeded SubmitResponse = "rateLimitExceeded"
	ResponseLevelClosed       SubmitResponse = "levelClosed"
	ResponseUnauthorized      SubmitResponse = "unauthorized"
)

// ScoreEntry is one user's row within a single scoreboard projection.
type ScoreEntry struct {
	User       string `json:"user"`
	Solved     int    `json:"solved"`
	TieBreaker string `json:"tieBreaker"`
}

// Scoreboard is one ranked projection (e.g. by time, size, or speed).
type Scoreboard struct {
	Title   string       `json:"title"`
	Entries []ScoreEntry `json:"entries"`
}

// Scoreboards is the full GET /scores response body.
type Scoreboards struct {
	Scoreboards []Scoreboard `json:"scoreboards"`
}

// AdminSetLevelRequest is the POST /admin/level body: a fresh grid and
// objects, the shared ghost program, and a move limit. The move limit is
// carried onto the installed kernel.Level; the registry evaluates every
// submission against its configured MaxSteps, not against this value.
type AdminSetLevelRequest struct {
	Level        LevelState `json:"level"`
	GhostProgram Program    `json:"ghostProgram"`
	MoveLimit    int        `json:"moveLimit"`
}

// AdminSetLevelClosedRequest is the POST /admin/level/closed body.
type AdminSetLevelClosedRequest struct {
	Closed bool `json:"closed"`
}

// AdminRateLimitRequest is the POST /admin/ratelimit body: a user and the
// (count, window) pair their limiter should be created or reconfigured
// with.
type AdminRateLimitRequest struct {
	User   string `json:"user"`
	Count  int    `json:"count"`
	Window string `json:"window"`
}

// SubmitRequest is the POST /submit body.
type SubmitRequest struct {
	Program Program `json:"program"`
}

// SubmitResult is the POST /submit response body.
type SubmitResult struct {
	Response SubmitResponse `json:"response"`
	ID       int            `json:"id,omitempty"`
}

// ToKernelLevel converts an admin set-level request into a kernel.Level.
func ToKernelLevel(req AdminSetLevelRequest) (kernel.Level, error) {
	ghostProgram, err := ToKernelProgram(req.GhostProgram)
	if err != nil {
		return kernel.Level{}, fmt.Errorf("wire: ghostProgram: %w", err)
	}
	state := ToKernelLevelState(req.Level)
	return kernel.Level{
		Grid:         state.Grid,
		Objects:      state.Objects,
		GhostProgram: ghostProgram,
		MoveLimit:    req.MoveLimit,
	}, nil
}

// ToKernelProgram converts a wire Program into the kernel's internal
// representation, resolving each optional filter pointer independently.
func ToKernelProgram(p Program) (kernel.Program, error) {
	out := kernel.Program{Rules: make([]kernel.Rule, len(p.Rules))}
	for i, r := range p.Rules {
		kr := kernel.Rule{}
		if r.CurrentState != nil {
			ks, ok := ruleStateToKernel[*r.CurrentState]
			if !ok {
				return kernel.Program{}, fmt.Errorf("wire: rule %d: invalid currentState %q", i, *r.CurrentState)
			}
			kr.CurrentState = &ks
		}
		var err error
		if kr.Up, err = convertCellPtr(r.Up, i, "up"); err != nil {
			return kernel.Program{}, err
		}
		if kr.Down, err = convertCellPtr(r.Down, i, "down"); err != nil {
			return kernel.Program{}, err
		}
		if kr.Left, err = convertCellPtr(r.Left, i, "left"); err != nil {
			return kernel.Program{}, err
		}
		if kr.Right, err = convertCellPtr(r.Right, i, "right"); err != nil {
			return kernel.Program{}, err
		}
		if r.Berry != nil {
			kb, ok := ruleBerryToKernel[*r.Berry]
			if !ok {
				return kernel.Program{}, fmt.Errorf("wire: rule %d: invalid berry %q", i, *r.Berry)
			}
			kr.Berry = &kb
		}
		move, ok := moveToKernel[r.NextMove]
		if !ok {
			return kernel.Program{}, fmt.Errorf("wire: rule %d: invalid nextMove %q", i, r.NextMove)
		}
		kr.NextMove = move
		state, ok := ruleStateToKernel[r.NextState]
		if !ok {
			return kernel.Program{}, fmt.Errorf("wire: rule %d: invalid nextState %q", i, r.NextState)
		}
		kr.NextState = state
		out.Rules[i] = kr
	}
	return out, nil
}

func convertCellPtr(c *RuleCell, ruleIdx int, field string) (*kernel.RuleCell, error) {
	if c == nil {
		return nil, nil
	}
	kc, ok := ruleCellToKernel[*c]
	if !ok {
		return nil, fmt.Errorf("wire: rule %d: invalid %s %q", ruleIdx, field, *c)
	}
	return &kc, nil
}

// FromKernelGrid converts a kernel.Grid into its wire cell matrix.
func FromKernelGrid(g kernel.Grid) [][]Cell {
	out := make([][]Cell, g.Height())
	for r := 0; r < g.Height(); r++ {
		row := make([]Cell, g.Width())
		for c := 0; c < g.Width(); c++ {
			row[c] = gridCellFromKernel[g.At(r, c)]
		}
		out[r] = row
	}
	return out
}

// ToKernelGrid converts a wire cell matrix into a kernel.Grid.
func ToKernelGrid(cells [][]Cell) kernel.Grid {
	out := make([][]kernel.Cell, len(cells))
	for r, row := range cells {
		kr := make([]kernel.Cell, len(row))
		for c, cell := range row {
			kr[c] = gridCellToKernel[cell]
		}
		out[r] = kr
	}
	return kernel.Grid{Cells: out}
}

// FromKernelObject converts one kernel.Object to its wire representation.
func FromKernelObject(o kernel.Object) Object {
	return Object{
		ID:           o.ID,
		Row:          o.Row,
		Col:          o.Col,
		CurrentMove:  moveFromKernel[o.CurrentMove],
		IntendedMove: moveFromKernel[o.IntendedMove],
		State:        deathFromKernel[o.State],
		Kind:         kindFromKernel[o.Kind],
	}
}

// ToKernelObject converts one wire Object into a kernel.Object. The
// kernel-private rule state is left at its zero value; callers that need
// to seed a Level from scratch always start agents in state A anyway.
func ToKernelObject(o Object) kernel.Object {
	return kernel.Object{
		ID:           o.ID,
		Row:          o.Row,
		Col:          o.Col,
		CurrentMove:  moveToKernel[o.CurrentMove],
		IntendedMove: moveToKernel[o.IntendedMove],
		State:        deathToKernel[o.State],
		Kind:         kindToKernel[o.Kind],
	}
}

// FromKernelLevelState converts a kernel.LevelState to its wire form.
func FromKernelLevelState(ls kernel.LevelState) LevelState {
	objs := make([]Object, len(ls.Objects))
	for i, o := range ls.Objects {
		objs[i] = FromKernelObject(o)
	}
	return LevelState{Cells: FromKernelGrid(ls.Grid), Objects: objs}
}

// ToKernelLevelState converts a wire LevelState into a kernel.LevelState.
func ToKernelLevelState(ls LevelState) kernel.LevelState {
	objs := make([]kernel.Object, len(ls.Objects))
	for i, o := range ls.Objects {
		objs[i] = ToKernelObject(o)
	}
	return kernel.LevelState{Grid: ToKernelGrid(ls.Cells), Objects: objs}
}

// FromKernelStep converts a kernel.Step to its wire form.
func FromKernelStep(s kernel.Step) Step {
	objs := make([]Object, len(s.Objects))
	for i, o := range s.Objects {
		objs[i] = FromKernelObject(o)
	}
	return Step{Objects: objs}
}

// FromKernelSubmissionDetails converts a kernel.SubmissionDetails to its
// wire form, the body returned by GET /submissions/{id}.
func FromKernelSubmissionDetails(d kernel.SubmissionDetails) SubmissionDetails {
	steps := make([]Step, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = FromKernelStep(s)
	}
	return SubmissionDetails{
		InitialState: FromKernelLevelState(d.InitialState),
		Steps:        steps,
		Outcome:      outcomeFromKernel[d.Outcome],
	}
}

// RuleStateFromKernel exposes the state lookup for callers (e.g. level
// seeding code) that need the wire spelling of a kernel.RuleState.
func RuleStateFromKernel(s kernel.RuleState) RuleState { return ruleStateFromKernel[s] }
