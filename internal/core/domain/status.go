package domain

import "strings"

// StatusBadge is the label and tone shown for a record status
type StatusBadge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

var consultationStatuses = map[ConsultationStatus]StatusBadge{
	ConsultationScheduled:  {Label: "Scheduled", Tone: ToneInfo},
	ConsultationInProgress: {Label: "In Progress", Tone: ToneWarning},
	ConsultationCompleted:  {Label: "Completed", Tone: ToneSuccess},
	ConsultationCancelled:  {Label: "Cancelled", Tone: ToneGray},
	ConsultationNoShow:     {Label: "No Show", Tone: ToneDanger},
}

var followUpStatuses = map[FollowUpStatus]StatusBadge{
	FollowUpPending:     {Label: "Pending", Tone: ToneWarning},
	FollowUpCompleted:   {Label: "Completed", Tone: ToneSuccess},
	FollowUpNoAnswer:    {Label: "No Answer", Tone: ToneDanger},
	FollowUpRescheduled: {Label: "Rescheduled", Tone: ToneInfo},
	FollowUpCancelled:   {Label: "Cancelled", Tone: ToneGray},
}

var riskTones = map[RiskLevel]Tone{
	RiskLevelRed:    ToneDanger,
	RiskLevelYellow: ToneWarning,
	RiskLevelGreen:  ToneSuccess,
}

var deliveryTitles = map[DeliveryOutcome]string{
	DeliverySuccessful:      "Successful Delivery",
	DeliveryMotherMortality: "Mother Mortality",
	DeliveryBabyMortality:   "Baby Mortality",
	DeliveryBothMortality:   "Both Mortality",
}

// Badge returns the status badge; unmapped statuses show the raw value in a neutral tone
func (s ConsultationStatus) Badge() StatusBadge {
	if b, ok := consultationStatuses[s]; ok {
		return b
	}
	return StatusBadge{Label: string(s), Tone: ToneNeutral}
}

// Badge returns the status badge; unmapped statuses show the raw value in a neutral tone
func (s FollowUpStatus) Badge() StatusBadge {
	if b, ok := followUpStatuses[s]; ok {
		return b
	}
	return StatusBadge{Label: string(s), Tone: ToneNeutral}
}

// Tone maps a risk level to its display tone, gray when unknown
func (r RiskLevel) Tone() Tone {
	if t, ok := riskTones[r]; ok {
		return t
	}
	return ToneGray
}

// Title returns the timeline title for a delivery outcome
func (o DeliveryOutcome) Title() string {
	if t, ok := deliveryTitles[o]; ok {
		return t
	}
	return string(o)
}

// Label renders the alert type for display, e.g. "HIGH RISK DETECTED"
func (a AlertType) Label() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// Badge returns the alert status badge from its resolution flags
func (a RiskAlert) Badge() StatusBadge {
	switch {
	case a.IsResolved:
		return StatusBadge{Label: "Resolved", Tone: ToneSuccess}
	case a.IsAcknowledged:
		return StatusBadge{Label: "Acknowledged", Tone: ToneInfo}
	default:
		return StatusBadge{Label: "Active", Tone: ToneDanger}
	}
}
