package classifier

import (
	"regexp"
	"strings"

	"github.com/Ayash-Bera/campusqa/internal/models"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// keywordTable is scanned in order; on equal scores the earlier category wins.
var keywordTable = []categoryKeywords{
	{models.CategoryScholarships, []string{
		"scholarship", "scholarships", "fee", "fees", "tuition", "cost", "payment",
		"afford", "expensive", "cheap", "lakh", "lakhs", "rupee", "rupees", "price", "funding", "financial",
		"total fee", "hostel fee", "program fee", "merit-based", "renewal", "available at niat",
	}},
	{models.CategoryHostel, []string{
		"hostel", "hostels", "hostel fee", "accommodation", "room", "rooms", "stay", "living",
		"mess", "food", "boarding", "residence", "pg", "rent", "occupancy", "occupancy room",
	}},
	{models.CategoryAdmissions, []string{
		"admission", "admissions", "eligibility", "apply", "criteria", "cutoff", "cut off",
		"counseling", "counselling", "join", "enroll", "enrollment", "qualification",
		"12th", "class 12", "aggregate", "marks", "percentage", "guaranteed after",
		"choose which city", "choose city", "university want", "documents",
	}},
	{models.CategoryExams, []string{
		"exam", "exams", "syllabus", "curriculum", "nat", "entrance", "test", "tests",
		"prepare", "preparation", "subject", "subjects", "course", "semester", "semesters",
		"study", "learning", "topics", "books", "psychometric", "critical thinking",
		"81 questions", "negative marking", "crack it", "updated", "skill map",
	}},
	{models.CategoryCampusLife, []string{
		"campus", "life", "college life", "culture", "sports", "clubs", "events",
		"facilities", "library", "lab", "labs", "infrastructure", "atmosphere",
		"holiday", "holidays", "break", "breaks", "weekend", "safe", "safety",
		"female students", "campus infrastructure", "wi-fi", "cafeteria", "washrooms",
	}},
	{models.CategoryPlacements, []string{
		"placement", "placements", "job", "jobs", "career", "internship", "internships",
		"company", "companies", "hire", "hiring", "salary", "package", "recruiter", "recruiters",
		"interview", "interviews", "guarantee", "guaranteed", "employability",
		"first internship", "mock interviews", "placement support", "graduation",
	}},
	{models.CategoryRules, []string{
		"rule", "rules", "regulation", "regulations", "policy", "policies",
		"allowed", "allow", "permit", "prohibited", "ban", "attendance", "discipline",
		"leave", "punishment", "complaint", "grievance",
	}},
	{models.CategoryAcademics, []string{
		"faculty", "teacher", "teachers", "mentor", "mentors", "professor",
		"academic", "academics", "teaching", "lecture", "lectures", "class", "quality",
		"specialization", "specialisations", "branch", "btech", "b.tech",
		"degree", "degrees", "valid", "government jobs", "higher studies", "abroad",
		"computer science", "cse", "ai", "ml", "data science", "full stack",
		"practical", "theory", "industry", "skill", "skills", "projects", "hackathon",
	}},
	{models.CategoryGeneral, []string{
		"recognized", "recognition", "nasscom", "government", "worth", "transfer",
		"exactly", "runs", "who runs", "different", "operate", "states", "cities",
		"compare", "comparison", "regular", "private engineering",
	}},
}

var wordPattern = regexp.MustCompile(`\w+`)

// ClassifyKeywords scores every category: a phrase found as a bigram or in the
// raw text scores 2, a single keyword found as a word or substring scores 1.
// The strictly highest score wins; no match at all yields General.
func ClassifyKeywords(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return models.CategoryGeneral
	}

	words := wordPattern.FindAllString(text, -1)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	bigrams := make(map[string]bool, len(words))
	for i := 0; i+1 < len(words); i++ {
		bigrams[words[i]+" "+words[i+1]] = true
	}

	best, bestScore := models.CategoryGeneral, 0
	for _, entry := range keywordTable {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(kw, " ") {
				if bigrams[kw] || strings.Contains(text, kw) {
					score += 2
				}
			} else if wordSet[kw] || strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.category, score
		}
	}
	return best
}
