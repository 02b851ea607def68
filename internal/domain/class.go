package domain

import "time"

// SessionStub is the minimal identity of a class session as found on the listing page.
type SessionStub struct {
	Name       string `yaml:"name"`
	GradeRange string `yaml:"gradeRange"`
	SessionID  string `yaml:"sessionId"`
	DetailURL  string `yaml:"sessionDetailUrl"`
}

// DetailRecord holds the best-effort fields recovered from one detail page.
// Unmatched string fields are empty; NumberOfClasses is nil when absent.
type DetailRecord struct {
	Instructor      string `yaml:"instructor"`
	GradeLevels     string `yaml:"gradeLevels"`
	DayOfWeek       string `yaml:"dayOfWeek"`
	Time            string `yaml:"time"`
	StartDate       string `yaml:"startDate"`
	EndDate         string `yaml:"endDate"`
	NumberOfClasses *int   `yaml:"numberOfClasses,omitempty"`
	Location        string `yaml:"location"`
	Cost            string `yaml:"cost"`
	ProgramOverview string `yaml:"programOverview"`
}

// EnrichedRecord is a stub merged with its parsed detail fields.
type EnrichedRecord struct {
	SessionStub  `yaml:",inline"`
	DetailRecord `yaml:",inline"`
}

// Enrich merges a stub and its detail into one exportable record.
func Enrich(stub SessionStub, detail DetailRecord) EnrichedRecord {
	return EnrichedRecord{SessionStub: stub, DetailRecord: detail}
}

// ScrapeConfig is the immutable set of run parameters handed to the pipeline.
type ScrapeConfig struct {
	CampID      int
	CampCode    string
	LocationID  int
	GradeFilter string
	RateLimit   time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// RunSummary carries the counters and metadata attached to exported output.
type RunSummary struct {
	ListingsFound       int
	FilteredCount       int
	ExtendedCareSkipped int
	SuccessCount        int
	FailureCount        int
	ScrapedAt           time.Time
	Config              ScrapeConfig
}

// GradeRange is an inclusive span of grade tokens such as {2nd, 5th}.
type GradeRange struct {
	Start string
	End   string
}
