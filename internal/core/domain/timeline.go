package domain

import "time"

// Category identifies which clinical record a timeline event came from
type Category string

const (
	CategoryRegistration Category = "registration"
	CategoryHealthCheck  Category = "health_check"
	CategoryConsultation Category = "consultation"
	CategoryFollowUp     Category = "follow_up"
	CategoryAlert        Category = "alert"
	CategoryDelivery     Category = "delivery"
)

// Tone is the presentation color token of an event or status badge
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
	TonePrimary Tone = "primary"
	ToneGray    Tone = "gray"
	ToneNeutral Tone = "neutral"
)

// Icon is the presentation icon token of an event
type Icon string

const (
	IconUserPlus       Icon = "user-plus"
	IconClipboardCheck Icon = "clipboard-check"
	IconVideoCamera    Icon = "video-camera"
	IconPhone          Icon = "phone"
	IconWarning        Icon = "exclamation-triangle"
	IconBellAlert      Icon = "bell-alert"
	IconHeartSolid     Icon = "heart-solid"
	IconHeart          Icon = "heart"
)

// DetailField is one label/value pair shown under a timeline event
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TimelineEvent is the single display shape every clinical record normalizes into
// Events are built fresh on every call and never mutated afterwards.
// Source holds a copy of the record the event was built from.
type TimelineEvent struct {
	ID          string         `json:"id"`
	Category    Category       `json:"category"`
	Timestamp   time.Time      `json:"timestamp"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        Icon           `json:"icon"`
	Color       Tone           `json:"color"`
	StatusLabel string         `json:"status_label,omitempty"`
	StatusColor Tone           `json:"status_color,omitempty"`
	RiskLevel   RiskLevel      `json:"risk_level,omitempty"`
	Details     []DetailField  `json:"details"`
	Source      ClinicalRecord `json:"source"`
}

// Detail returns the value of the labelled detail and whether it is present
func (e TimelineEvent) Detail(label string) (string, bool) {
	for _, d := range e.Details {
		if d.Label == label {
			return d.Value, true
		}
	}
	return "", false
}
