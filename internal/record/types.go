package record

import "time"

type Parent struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Occupation   string `json:"occupation,omitempty"`
	Employer     string `json:"employer,omitempty"`
	Education    string `json:"education,omitempty"`
	College      string `json:"college,omitempty"`
}

type Household struct {
	Income            Text `json:"income,omitempty"`
	Size              Text `json:"size,omitempty"`
	SiblingsInCollege Text `json:"siblingsInCollege,omitempty"`
}

type StudentInfo struct {
	Name        string     `json:"name,omitempty"`
	Grade       Text       `json:"grade,omitempty"`
	GPA         Text       `json:"gpa,omitempty"`
	SAT         Text       `json:"sat,omitempty"`
	ACT         Text       `json:"act,omitempty"`
	State       string     `json:"state,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Zip         Text       `json:"zip,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"`
	Citizenship string     `json:"citizenship,omitempty"`
	Interests   string     `json:"interests,omitempty"`
	Parent1     *Parent    `json:"parent1,omitempty"`
	Parent2     *Parent    `json:"parent2,omitempty"`
	Household   *Household `json:"household,omitempty"`
}

type CollegeType string

const (
	CollegeSafety CollegeType = "Safety"
	CollegeTarget CollegeType = "Target"
	CollegeReach  CollegeType = "Reach"
)

func (t CollegeType) Valid() bool {
	switch t {
	case CollegeSafety, CollegeTarget, CollegeReach:
		return true
	}
	return false
}

type CollegeStatus string

const (
	StatusNotStarted CollegeStatus = "Not Started"
	StatusInProgress CollegeStatus = "In Progress"
	StatusSubmitted  CollegeStatus = "Submitted"
)

func (s CollegeStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusSubmitted:
		return true
	}
	return false
}

// College is one entry of the user's list. Deadlines are YYYY-MM-DD.
type College struct {
	Name          string        `json:"name"`
	Location      string        `json:"location,omitempty"`
	Type          CollegeType   `json:"type"`
	Status        CollegeStatus `json:"status"`
	Deadline      string        `json:"deadline,omitempty"`
	EarlyDeadline string        `json:"earlyDeadline,omitempty"`
	DeadlineType  string        `json:"deadlineType,omitempty"`
	AddedDate     *time.Time    `json:"addedDate,omitempty"`
}

// HealthScore is the heuristic grade attached to a reviewed essay.
type HealthScore struct {
	Overall        int `json:"overall"`
	Content        int `json:"content"`
	Structure      int `json:"structure"`
	Grammar        int `json:"grammar"`
	Voice          int `json:"voice"`
	Plagiarism     int `json:"plagiarism"`
	WordCountScore int `json:"wordCountScore"`
}

type CommonAppEssay struct {
	Prompt       int          `json:"prompt"`
	Content      string       `json:"content"`
	WordCount    int          `json:"wordCount"`
	AIFeedback   string       `json:"aiFeedback,omitempty"`
	HealthScore  *HealthScore `json:"healthScore,omitempty"`
	LastModified *time.Time   `json:"lastModified,omitempty"`
}

type SupplementalEssay struct {
	CollegeName string `json:"collegeName"`
	PromptText  string `json:"promptText,omitempty"`
	WordLimit   int    `json:"wordLimit,omitempty"`
	Content     string `json:"content,omitempty"`
	Status      string `json:"status,omitempty"`
}

type Essays struct {
	CommonApp    *CommonAppEssay     `json:"commonApp,omitempty"`
	Supplemental []SupplementalEssay `json:"supplemental,omitempty"`
}

type Activity struct {
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	Role          string `json:"role,omitempty"`
	Description   string `json:"description,omitempty"`
	YearsInvolved Text   `json:"yearsInvolved,omitempty"`
	HoursPerWeek  Text   `json:"hoursPerWeek,omitempty"`
}

type Recommender struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject,omitempty"`
	Status  string `json:"status,omitempty"`
}

type DailyActivity struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Notes    string `json:"notes,omitempty"`
}

// UserRecord is the per-user aggregate. Each top-level field is persisted
// independently.
type UserRecord struct {
	StudentInfo     StudentInfo     `json:"studentInfo"`
	Colleges        []College       `json:"colleges"`
	Essays          Essays          `json:"essays"`
	Activities      []Activity      `json:"activities"`
	Recommenders    []Recommender   `json:"recommenders"`
	DailyActivities []DailyActivity `json:"dailyActivities"`
}

// Empty returns a record whose lists encode as [] rather than null.
func Empty() *UserRecord {
	return &UserRecord{
		Colleges:        []College{},
		Activities:      []Activity{},
		Recommenders:    []Recommender{},
		DailyActivities: []DailyActivity{},
	}
}

func (r *UserRecord) normalize() {
	if r.Colleges == nil {
		r.Colleges = []College{}
	}
	if r.Activities == nil {
		r.Activities = []Activity{}
	}
	if r.Recommenders == nil {
		r.Recommenders = []Recommender{}
	}
	if r.DailyActivities == nil {
		r.DailyActivities = []DailyActivity{}
	}
}
