package service

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Analysis is the classifier verdict for a single email.
type Analysis struct {
	IsRelevant bool    `json:"isRelevant"`
	Reason     string  `json:"reason"`
	Deadline   *string `json:"deadline"` // calendar date, YYYY-MM-DD
}

// Rand is the source of randomness for the classifier. Tests
// substitute a deterministic stand-in.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// SystemRand backs Rand with math/rand's package-level functions,
// whose global source is safe for concurrent use. A bare *rand.Rand
// is not, and Analyze runs on concurrent requests.
type SystemRand struct{}

func (SystemRand) Float64() float64 { return rand.Float64() }
func (SystemRand) Intn(n int) int   { return rand.Intn(n) }

var domainKeywords = map[string][]string{
	"Software Development": {"code", "programming", "development", "software", "api", "database", "frontend", "backend"},
	"Healthcare":           {"patient", "medical", "health", "doctor", "nurse", "hospital", "treatment"},
	"Finance":              {"money", "investment", "banking", "financial", "budget", "account", "payment"},
	"Education":            {"student", "course", "learning", "teacher", "school", "university", "education"},
	"Marketing":            {"campaign", "marketing", "brand", "advertising", "social media", "customer"},
	"Legal":                {"legal", "law", "court", "contract", "attorney", "case", "justice"},
	"Engineering":          {"engineering", "design", "construction", "technical", "project", "infrastructure"},
	"Sales":                {"sales", "revenue", "customer", "deal", "target", "quota", "commission"},
	"Human Resources":      {"hr", "recruitment", "hiring", "employee", "training", "payroll", "benefits"},
	"Customer Support":     {"support", "customer service", "help", "ticket", "issue", "resolution"},
	"Design":               {"design", "ui", "ux", "creative", "graphics", "visual", "prototype"},
	"Research":             {"research", "study", "analysis", "data", "findings", "report", "methodology"},
	"Operations":           {"operations", "process", "efficiency", "logistics", "supply chain", "management"},
	"Consulting":           {"consulting", "advisor", "strategy", "recommendation", "expertise", "solution"},
}

var positiveReasons = []string{
	"This email contains relevant information for %s professionals",
	"Content aligns with your professional domain in %s",
	"Important updates related to %s industry",
	"Professional development opportunity in %s",
}

var negativeReasons = []string{
	"This email is not relevant to your %s domain",
	"Content does not align with your professional interests",
	"General information not specific to %s",
	"Outside your area of professional expertise",
}

// Matches an ISO date, a slash date, or a "DD Mon YYYY" date.
var deadlinePattern = regexp.MustCompile(
	`(?i)(\d{4}-\d{2}-\d{2})|(\d{1,2}/\d{1,2}/\d{4})|(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{4})`,
)

// ClassifyService decides whether an email matters to a user's
// professional domain. The decision mixes keyword matching with a
// random component standing in for a model call, so the randomness
// and clock are injected.
type ClassifyService struct {
	rng Rand
	now func() time.Time
}

func NewClassifyService(rng Rand, now func() time.Time) *ClassifyService {
	return &ClassifyService{
		rng: rng,
		now: now,
	}
}

// Analyze classifies an email against the user's domain. An unknown
// domain has no keywords, leaving only the random component.
func (s *ClassifyService) Analyze(subject, body, domain string) Analysis {
	text := strings.ToLower(subject + " " + body)

	relevant := false
	for _, kw := range domainKeywords[domain] {
		if strings.Contains(text, kw) {
			relevant = true
			break
		}
	}
	if !relevant && s.rng.Float64() > 0.6 {
		relevant = true
	}

	pool := negativeReasons
	if relevant {
		pool = positiveReasons
	}
	reason := formatReason(pool[s.rng.Intn(len(pool))], domain)

	var deadline *string
	if match := deadlinePattern.FindString(text); match != "" && relevant {
		if strings.Contains(match, "-") {
			// ISO date passes through verbatim.
			deadline = &match
		} else {
			d := s.now().AddDate(0, 0, 7).Format("2006-01-02")
			deadline = &d
		}
	} else if relevant && s.rng.Float64() > 0.7 {
		d := s.now().AddDate(0, 0, s.rng.Intn(14)+1).Format("2006-01-02")
		deadline = &d
	}

	return Analysis{
		IsRelevant: relevant,
		Reason:     reason,
		Deadline:   deadline,
	}
}

func formatReason(tmpl, domain string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, domain)
	}
	return tmpl
}
