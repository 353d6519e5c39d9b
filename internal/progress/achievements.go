package progress

// snapshot is the view a predicate evaluates against. Points are frozen
// at the start of an evaluation pass, so bonuses awarded during the pass
// can never feed back into a points-threshold trigger.
type snapshot struct {
	points   int
	streak   int
	lessons  int
	attempts int
	average  float64
}

type definition struct {
	id        string
	title     string
	points    int
	satisfied func(s snapshot) bool
}

// PerfectScoreID unlocks only through a full-marks quiz, never from a
// state predicate.
const PerfectScoreID = "perfect_score"

var catalogue = []definition{
	{
		id: "first_lesson", title: "First Steps", points: 10,
		satisfied: func(s snapshot) bool { return s.lessons >= 1 },
	},
	{
		id: "ten_lessons", title: "Dedicated Student", points: 50,
		satisfied: func(s snapshot) bool { return s.lessons >= 10 },
	},
	{
		id: PerfectScoreID, title: "Flawless", points: 20,
		satisfied: func(snapshot) bool { return false },
	},
	{
		id: "points_100", title: "Century", points: 25,
		satisfied: func(s snapshot) bool { return s.points >= 100 },
	},
	{
		id: "points_500", title: "Scholar", points: 50,
		satisfied: func(s snapshot) bool { return s.points >= 500 },
	},
	{
		id: "points_1000", title: "Hafiz of Knowledge", points: 100,
		satisfied: func(s snapshot) bool { return s.points >= 1000 },
	},
	{
		id: "streak_7", title: "One Week Strong", points: 30,
		satisfied: func(s snapshot) bool { return s.streak >= 7 },
	},
	{
		id: "streak_30", title: "A Month of Light", points: 100,
		satisfied: func(s snapshot) bool { return s.streak >= 30 },
	},
}

func findDefinition(id string) (definition, bool) {
	for _, d := range catalogue {
		if d.id == id {
			return d, true
		}
	}
	return definition{}, false
}
