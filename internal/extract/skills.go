package extract

import (
	"regexp"
	"strings"
)

// skillPatterns recognize common technologies in listing text.
// Recognition is keyword-based on purpose: the skill list only seeds
// portfolio retrieval, so recall beats precision here.
var skillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:Python|Java|JavaScript|TypeScript|Go|Golang|Rust|C\+\+|Ruby|Kotlin|Swift)\b`),
	regexp.MustCompile(`(?i)\b(?:React|Node\.js|Angular|Vue\.js|Django|Flask|Spring|Rails|Express)\b`),
	regexp.MustCompile(`(?i)\b(?:MySQL|PostgreSQL|MongoDB|Redis|SQLite|Oracle|SQL Server|Cassandra)\b`),
	regexp.MustCompile(`(?i)\b(?:AWS|Azure|GCP|Docker|Kubernetes|Terraform|Jenkins|CI/CD)\b`),
	regexp.MustCompile(`(?i)\b(?:HTML|CSS|SCSS|Bootstrap|Tailwind|jQuery|GraphQL|REST)\b`),
	regexp.MustCompile(`(?i)\b(?:Machine Learning|Deep Learning|TensorFlow|PyTorch|Scikit-learn|Pandas|NumPy|NLP)\b`),
	regexp.MustCompile(`(?i)\b(?:Kafka|RabbitMQ|gRPC|Microservices|DevOps|Agile|Scrum|TDD)\b`),
}

// RecognizeSkills extracts likely skills/technologies from listing text.
// Results are deduplicated case-insensitively, preserving first-occurrence order.
func RecognizeSkills(text string) []string {
	if text == "" {
		return nil
	}

	type match struct {
		pos  int
		text string
	}
	var matches []match
	for _, pattern := range skillPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, match{pos: loc[0], text: text[loc[0]:loc[1]]})
		}
	}

	// Order by position so output is stable regardless of pattern order.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].pos < matches[j-1].pos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	seen := make(map[string]bool)
	var skills []string
	for _, m := range matches {
		key := strings.ToLower(m.text)
		if !seen[key] {
			seen[key] = true
			skills = append(skills, m.text)
		}
	}
	return skills
}
