package scoreboard

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAddUserEvaluation(t *testing.T) {
	Convey("Given an empty scoreboard", t, func() {
		board := New()

		Convey("The first win for a user inserts solved=1 with that win's penalties", func() {
			board.AddUserEvaluation("ada", 72, 10, 4)
			entries := board.Rank(PenaltyTime)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].User, ShouldEqual, "ada")
			So(entries[0].Solved, ShouldEqual, uint64(1))
			So(entries[0].TieBreaker, ShouldEqual, "1:12")
		})

		Convey("A second, worse win for the same user does not raise solved or the penalties", func() {
			board.AddUserEvaluation("ada", 72, 10, 4)
			board.AddUserEvaluation("ada", 90, 20, 8)
			entries := board.Rank(PenaltyTime)
			So(entries[0].Solved, ShouldEqual, uint64(1))
			So(entries[0].TieBreaker, ShouldEqual, "1:12")
		})

		Convey("A second, better win for the same user lowers the penalties elementwise", func() {
			board.AddUserEvaluation("ada", 72, 10, 4)
			board.AddUserEvaluation("ada", 30, 50, 1)
			entries := board.Rank(PenaltySize)
			So(entries[0].TieBreaker, ShouldEqual, "10")
			timeEntries := board.Rank(PenaltyTime)
			So(timeEntries[0].TieBreaker, ShouldEqual, "0:30")
		})
	})
}

func TestAddLevelScores(t *testing.T) {
	Convey("Given a global scoreboard and a level scoreboard with overlapping users", t, func() {
		global := New()
		global.AddUserEvaluation("ada", 10, 5, 2)

		level := New()
		level.AddUserEvaluation("ada", 20, 3, 1)
		level.AddUserEvaluation("grace", 15, 4, 3)

		global.AddLevelScores(level)

		Convey("A new user is copied in wholesale", func() {
			entries := global.Rank(PenaltyTime)
			var grace *Entry
			for i := range entries {
				if entries[i].User == "grace" {
					grace = &entries[i]
				}
			}
			So(grace, ShouldNotBeNil)
			So(grace.Solved, ShouldEqual, uint64(1))
		})

		Convey("An existing user's totals accumulate rather than minimize", func() {
			entries := global.Rank(PenaltyTime)
			var ada *Entry
			for i := range entries {
				if entries[i].User == "ada" {
					ada = &entries[i]
				}
			}
			So(ada, ShouldNotBeNil)
			So(ada.Solved, ShouldEqual, uint64(2))
			So(ada.TieBreaker, ShouldEqual, "0:30")
		})
	})
}

func TestRankingOrder(t *testing.T) {
	Convey("Given three users with distinguishing solved counts and penalties", t, func() {
		board := New()
		board.AddUserEvaluation("bob", 10, 1, 1)
		board.AddLevelScores(func() *Scoreboard {
			l := New()
			l.AddUserEvaluation("bob", 0, 0, 0)
			return l
		}())
		board.AddUserEvaluation("ada", 5, 1, 1)
		board.AddUserEvaluation("cid", 5, 1, 1)

		Convey("Ranking sorts by solved DESC, then penalty ASC, then user ASC", func() {
			entries := board.Rank(PenaltyTime)
			So(entries[0].User, ShouldEqual, "bob")
			So(entries[1].User, ShouldEqual, "ada")
			So(entries[2].User, ShouldEqual, "cid")
		})
	})
}

func TestFormatMinSec(t *testing.T) {
	Convey("Given representative time penalties", t, func() {
		Convey("72 seconds formats as 1:12", func() {
			So(formatMinSec(72), ShouldEqual, "1:12")
		})
		Convey("0 seconds formats as 0:00", func() {
			So(formatMinSec(0), ShouldEqual, "0:00")
		})
		Convey("-65 seconds formats as -1:05", func() {
			So(formatMinSec(-65), ShouldEqual, "-1:05")
		})
	})
}
