package catalog

import (
	"fmt"

	"careerpath-service/internal/domain"
)

// Quizzes returns the built-in question banks keyed by quiz ID. Each built-in
// quiz shares its ID with its quiz type.
func Quizzes() map[string]domain.Quiz {
	quizzes := []domain.Quiz{subjectAptitudeQuiz(), degreeAptitudeQuiz(), careerInterestQuiz()}
	out := make(map[string]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		out[q.ID] = q
	}
	return out
}

// simple builds a question whose option at position i scores for the i-th
// subject category.
func simple(pos int, prompt string, texts ...string) domain.Question {
	opts := make([]domain.Option, len(texts))
	for i, text := range texts {
		opts[i] = domain.Option{ID: fmt.Sprintf("o%d", i+1), Text: text}
	}
	return domain.Question{ID: fmt.Sprintf("q%d", pos), Position: pos, Prompt: prompt, Options: opts}
}

type choice struct {
	text     string
	category string
	weight   int
}

func weighted(pos int, prompt string, choices ...choice) domain.Question {
	opts := make([]domain.Option, len(choices))
	for i, c := range choices {
		opts[i] = domain.Option{ID: fmt.Sprintf("o%d", i+1), Text: c.text, Category: c.category, Weight: c.weight}
	}
	return domain.Question{ID: fmt.Sprintf("q%d", pos), Position: pos, Prompt: prompt, Options: opts}
}

func subjectAptitudeQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    SubjectAptitude,
		Type:  SubjectAptitude,
		Title: "Which subjects suit you?",
		Questions: []domain.Question{
			simple(1, "Which homework would you finish first?",
				"Solving equations", "A motion experiment report", "Balancing reactions", "Labelling a cell diagram",
				"A shop's profit and loss sheet", "An essay on a historical event", "A painting or sketch", "Building a small website"),
			simple(2, "Which club would you join?",
				"Math olympiad", "Astronomy club", "Chemistry lab club", "Nature and wildlife club",
				"Young entrepreneurs", "Debate society", "Drama or music", "Robotics club"),
			simple(3, "What do you enjoy reading about?",
				"Puzzles and patterns", "Space and energy", "Materials and medicines", "The human body",
				"Markets and money", "Cultures and politics", "Artists and design", "Gadgets and software"),
			simple(4, "Pick a weekend project.",
				"A logic puzzle book", "A homemade circuit", "A crystal-growing kit", "A herb garden",
				"Selling crafts online", "Writing a blog", "Making a short film", "Coding a game"),
			simple(5, "Which job would you shadow for a day?",
				"Statistician", "Aerospace engineer", "Pharmacist", "Surgeon",
				"Chartered accountant", "Journalist", "Fashion designer", "Software developer"),
			simple(6, "Which school topic felt easiest?",
				"Algebra", "Mechanics", "Organic chemistry", "Genetics",
				"Accountancy", "History", "Art", "Computer applications"),
			simple(7, "What kind of problem do you like solving?",
				"Proving something is always true", "Explaining why things move", "Working out what something is made of", "Understanding how living things work",
				"Making a plan profitable", "Understanding why people act as they do", "Expressing an idea visually", "Automating a boring task"),
			simple(8, "Which video would you click first?",
				"The math behind card tricks", "How black holes work", "Explosive reactions in slow motion", "Inside a beating heart",
				"How startups get funded", "The fall of empires", "A speed-painting timelapse", "Building an AI chatbot"),
		},
	}
}

func degreeAptitudeQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    DegreeAptitude,
		Type:  DegreeAptitude,
		Title: "Find your degree branch",
		Questions: []domain.Question{
			weighted(1, "What would you most like to build?",
				choice{"An app used by millions", "computerScience", 4},
				choice{"A bridge or an engine", "engineering", 4},
				choice{"A treatment that saves lives", "medicine", 4},
				choice{"A brand people love", "design", 3}),
			weighted(2, "How do you prefer to spend a long afternoon?",
				choice{"Debugging a tricky program", "computerScience", 3},
				choice{"Running a lab experiment", "science", 3},
				choice{"Reading a gripping court case", "law", 3},
				choice{"Sketching product ideas", "design", 3}),
			weighted(3, "Which responsibility appeals to you?",
				choice{"Caring for patients", "medicine", 3},
				choice{"Managing a team and budget", "business", 3},
				choice{"Defending someone's rights", "law", 4},
				choice{"Keeping a factory running", "engineering", 3}),
			weighted(4, "Pick a favourite subject.",
				choice{"Computer science", "computerScience", 3},
				choice{"Physics", "engineering", 2},
				choice{"Biology", "medicine", 3},
				choice{"Literature", "arts", 3}),
			weighted(5, "What kind of workplace suits you?",
				choice{"A startup office", "business", 2},
				choice{"A research institute", "science", 3},
				choice{"A design studio", "design", 3},
				choice{"A newsroom or gallery", "arts", 3}),
			weighted(6, "Which achievement would make you proudest?",
				choice{"Publishing a scientific paper", "science", 4},
				choice{"Winning a landmark case", "law", 3},
				choice{"Growing a profitable company", "business", 4},
				choice{"Exhibiting your own work", "arts", 4}),
			weighted(7, "How do you approach a new gadget?",
				choice{"Figure out how its software works", "computerScience", 3},
				choice{"Open it up to see the parts", "engineering", 3},
				choice{"Judge how it looks and feels", "design", 2},
				choice{"Work out how to sell it", "business", 2}),
			weighted(8, "Which volunteer role would you pick?",
				choice{"First-aid camp", "medicine", 2},
				choice{"Legal aid clinic", "law", 2},
				choice{"Teaching kids to code", "computerScience", 2},
				choice{"Community mural", "arts", 2}),
		},
	}
}

func careerInterestQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    CareerInterest,
		Type:  CareerInterest,
		Title: "Career interest profile",
		Questions: []domain.Question{
			weighted(1, "In a group project you usually...",
				choice{"Analyse the data", "analytical", 3},
				choice{"Design the slides", "creative", 3},
				choice{"Keep everyone motivated", "social", 3},
				choice{"Build the prototype", "technical", 3}),
			weighted(2, "A free day is best spent...",
				choice{"Volunteering at a shelter", "caring", 4},
				choice{"Fixing things around the house", "practical", 3},
				choice{"Reading about new discoveries", "scientific", 3},
				choice{"Planning a side business", "business", 3}),
			weighted(3, "Which task sounds most satisfying?",
				choice{"Writing code that works first time", "technical", 4},
				choice{"Proving a hypothesis", "scientific", 4},
				choice{"Negotiating a good deal", "business", 3},
				choice{"Helping someone recover", "caring", 3}),
			weighted(4, "People come to you for...",
				choice{"Advice on tough decisions", "social", 3},
				choice{"Creative ideas", "creative", 4},
				choice{"Solving logic problems", "analytical", 4},
				choice{"Hands-on help", "practical", 2}),
			weighted(5, "Which environment energises you?",
				choice{"A busy hospital", "caring", 3},
				choice{"A construction site", "practical", 4},
				choice{"A quiet lab", "scientific", 2},
				choice{"A pitch meeting", "business", 4}),
			weighted(6, "What would you teach a workshop on?",
				choice{"Spreadsheets and statistics", "analytical", 2},
				choice{"Drawing and storytelling", "creative", 2},
				choice{"Public speaking", "social", 2},
				choice{"Building a PC", "technical", 2}),
		},
	}
}
