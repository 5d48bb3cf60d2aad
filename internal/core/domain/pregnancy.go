package domain

import "time"

const (
	// PregnancyDays is the standard gestation length used to derive an EDD from the LMP
	PregnancyDays = 280
	// PregnancyWeeks is the length of the progress axis
	PregnancyWeeks = 40
)

// Trimester of a pregnancy; the empty value means not yet started
type Trimester string

const (
	TrimesterNone   Trimester = ""
	TrimesterFirst  Trimester = "FIRST"
	TrimesterSecond Trimester = "SECOND"
	TrimesterThird  Trimester = "THIRD"
)

// TrimesterSpan describes the weeks a trimester covers
type TrimesterSpan struct {
	Trimester Trimester `json:"trimester"`
	Name      string    `json:"name"`
	FromWeek  int       `json:"from_week"`
	ToWeek    int       `json:"to_week"`
}

// Trimesters lists the trimester bands on the 1-40 week axis
var Trimesters = []TrimesterSpan{
	{Trimester: TrimesterFirst, Name: "1st Trimester", FromWeek: 1, ToWeek: 12},
	{Trimester: TrimesterSecond, Name: "2nd Trimester", FromWeek: 13, ToWeek: 26},
	{Trimester: TrimesterThird, Name: "3rd Trimester", FromWeek: 27, ToWeek: 40},
}

// TrimesterForWeek returns the trimester containing week, or TrimesterNone for week < 1
func TrimesterForWeek(week int) Trimester {
	for _, span := range Trimesters {
		if week >= span.FromWeek && week <= span.ToWeek {
			return span.Trimester
		}
	}
	if week > PregnancyWeeks {
		return TrimesterThird
	}
	return TrimesterNone
}

// CheckMarker places a health check on the week axis
type CheckMarker struct {
	Week      int       `json:"week"`
	Date      time.Time `json:"date"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// GestationalSnapshot is the pregnancy progress at a reference date
type GestationalSnapshot struct {
	CurrentWeek     int           `json:"current_week"`
	DaysRemaining   int           `json:"days_remaining"`
	Trimester       Trimester     `json:"trimester"`
	ProgressPercent float64       `json:"progress_percent"`
	LMP             time.Time     `json:"lmp"`
	EDD             time.Time     `json:"edd"`
	Markers         []CheckMarker `json:"markers"`
}
