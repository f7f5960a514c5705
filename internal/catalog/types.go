// Package catalog holds the built-in quiz types, their metadata tables and
// default question banks.
package catalog

import (
	"careerpath-service/internal/domain"
	"careerpath-service/internal/scoring"
)

const (
	SubjectAptitude = "subject-aptitude"
	DegreeAptitude  = "degree-aptitude"
	CareerInterest  = "career-interest"
)

// QuizTypes returns fresh copies of every built-in quiz type.
func QuizTypes() []scoring.QuizType {
	return []scoring.QuizType{subjectAptitudeType(), degreeAptitudeType(), careerInterestType()}
}

// NewEngine builds a scoring engine with the built-in quiz types.
func NewEngine() (*scoring.Engine, error) {
	return scoring.NewEngine(QuizTypes()...)
}

func parts(pairs ...any) []scoring.Component {
	out := make([]scoring.Component, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, scoring.Component{Category: pairs[i].(string), Weight: pairs[i+1].(int)})
	}
	return out
}

func entry(title, description, salary, demand, balance, security string) scoring.Entry {
	return scoring.Entry{
		Title: title,
		Details: domain.Details{
			Description:     description,
			SalaryBand:      salary,
			Demand:          demand,
			WorkLifeBalance: balance,
			JobSecurity:     security,
		},
	}
}

// subjectAptitudeType maps option positions straight onto school subjects and
// ranks the academic streams built from them.
func subjectAptitudeType() scoring.QuizType {
	return scoring.QuizType{
		ID:            SubjectAptitude,
		Title:         "Subject Aptitude",
		Categories:    []string{"mathematics", "physics", "chemistry", "biology", "commerce", "humanities", "arts", "technology"},
		Weighting:     scoring.WeightingSimple,
		Normalization: scoring.NormalizeByAnswered,
		Ranking:       scoring.RankByComposite,
		Composites: []scoring.Composite{
			{Key: "science-pcm", Components: parts("physics", 1, "chemistry", 1, "mathematics", 1)},
			{Key: "science-pcb", Components: parts("physics", 1, "chemistry", 1, "biology", 1)},
			{Key: "computer-science", Components: parts("technology", 2, "mathematics", 1, "physics", 1)},
			{Key: "commerce", Components: parts("commerce", 2, "mathematics", 1)},
			{Key: "humanities", Components: parts("humanities", 2, "arts", 1)},
			{Key: "fine-arts", Components: parts("arts", 2, "humanities", 1)},
		},
		Metadata: map[string]scoring.Entry{
			"science-pcm":      entry("Science (PCM)", "Physics, Chemistry and Mathematics; opens engineering and pure science.", "INR 6-20 LPA", "High", "Moderate", "High"),
			"science-pcb":      entry("Science (PCB)", "Physics, Chemistry and Biology; the route to medicine and life sciences.", "INR 5-25 LPA", "High", "Low", "High"),
			"computer-science": entry("Computer Science", "Mathematics and computing for software and data careers.", "INR 6-30 LPA", "Very high", "Moderate", "Moderate"),
			"commerce":         entry("Commerce", "Accounting, economics and business studies.", "INR 4-15 LPA", "High", "Moderate", "Moderate"),
			"humanities":       entry("Humanities", "History, political science, psychology and languages.", "INR 3-12 LPA", "Moderate", "High", "Moderate"),
			"fine-arts":        entry("Fine Arts", "Visual and performing arts, design foundations.", "INR 3-10 LPA", "Moderate", "High", "Low"),
		},
	}
}

func degreeAptitudeType() scoring.QuizType {
	return scoring.QuizType{
		ID:            DegreeAptitude,
		Title:         "Degree Branch Aptitude",
		Categories:    []string{"computerScience", "engineering", "medicine", "business", "arts", "science", "law", "design"},
		Weighting:     scoring.WeightingWeighted,
		Normalization: scoring.NormalizeByMaxObserved,
		Ranking:       scoring.RankByCategory,
		Metadata: map[string]scoring.Entry{
			"computerScience": entry("B.Tech Computer Science", "Software, systems, AI and data.", "INR 6-30 LPA", "Very high", "Moderate", "Moderate"),
			"engineering":     entry("B.Tech Core Engineering", "Mechanical, civil, electrical and electronics branches.", "INR 4-15 LPA", "High", "Moderate", "High"),
			"medicine":        entry("MBBS / Allied Health", "Clinical medicine, nursing, pharmacy and allied sciences.", "INR 8-30 LPA", "Very high", "Low", "Very high"),
			"business":        entry("BBA / B.Com", "Management, finance, marketing and operations.", "INR 4-20 LPA", "High", "Moderate", "Moderate"),
			"arts":            entry("BA Liberal Arts", "Literature, social sciences, media and languages.", "INR 3-10 LPA", "Moderate", "High", "Moderate"),
			"science":         entry("B.Sc Pure Sciences", "Physics, chemistry, mathematics and research tracks.", "INR 4-12 LPA", "Moderate", "High", "High"),
			"law":             entry("LLB / BA LLB", "Corporate, civil and criminal law.", "INR 5-25 LPA", "High", "Low", "High"),
			"design":          entry("B.Des", "Product, UX, fashion and communication design.", "INR 4-18 LPA", "High", "Moderate", "Moderate"),
		},
	}
}

// careerInterestType scores broad interest traits and ranks concrete careers
// as weighted blends of them.
func careerInterestType() scoring.QuizType {
	return scoring.QuizType{
		ID:            CareerInterest,
		Title:         "Career Interest",
		Categories:    []string{"analytical", "creative", "social", "technical", "business", "scientific", "caring", "practical"},
		Weighting:     scoring.WeightingWeighted,
		Normalization: scoring.NormalizeByMaxObserved,
		Ranking:       scoring.RankByComposite,
		Composites: []scoring.Composite{
			{Key: "software-engineer", Components: parts("technical", 3, "analytical", 2)},
			{Key: "data-scientist", Components: parts("analytical", 3, "scientific", 2, "technical", 1)},
			{Key: "doctor", Components: parts("caring", 3, "scientific", 2)},
			{Key: "teacher", Components: parts("social", 2, "caring", 2, "analytical", 1)},
			{Key: "ux-designer", Components: parts("creative", 3, "technical", 1, "social", 1)},
			{Key: "entrepreneur", Components: parts("business", 3, "social", 1, "creative", 1)},
			{Key: "lawyer", Components: parts("analytical", 2, "social", 2, "business", 1)},
			{Key: "civil-engineer", Components: parts("practical", 3, "technical", 2, "analytical", 1)},
		},
		Metadata: map[string]scoring.Entry{
			"software-engineer": entry("Software Engineer", "Designs and builds software systems.", "INR 6-35 LPA", "Very high", "Moderate", "Moderate"),
			"data-scientist":    entry("Data Scientist", "Turns data into models and decisions.", "INR 8-35 LPA", "Very high", "Moderate", "Moderate"),
			"doctor":            entry("Doctor", "Diagnoses and treats patients.", "INR 10-40 LPA", "Very high", "Low", "Very high"),
			"teacher":           entry("Teacher", "Educates and mentors students.", "INR 3-10 LPA", "High", "High", "High"),
			"ux-designer":       entry("UX Designer", "Shapes how people experience products.", "INR 5-20 LPA", "High", "Moderate", "Moderate"),
			"entrepreneur":      entry("Entrepreneur", "Starts and grows businesses.", "Variable", "Moderate", "Low", "Low"),
			"lawyer":            entry("Lawyer", "Advises and represents clients in legal matters.", "INR 5-30 LPA", "High", "Low", "High"),
			"civil-engineer":    entry("Civil Engineer", "Plans and builds infrastructure.", "INR 4-15 LPA", "High", "Moderate", "High"),
		},
	}
}
