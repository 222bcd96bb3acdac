package api

// Rule types known to the backend.
const (
	RuleTypeHealth  = "health_tracker"
	RuleTypeWarlord = "warlord"
)

type Rule struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"user_id"`
	SheetIntegrationID string  `json:"sheet_integration_id"`
	Name               string  `json:"name"`
	RuleType           string  `json:"rule_type"`
	CronSchedule       string  `json:"cron_schedule"`
	TargetColumn       string  `json:"target_column"`
	MetricName         *string `json:"metric_name"`
	PromptText         string  `json:"prompt_text"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// Metric returns the metric name or "" when unset.
func (r Rule) Metric() string {
	if r.MetricName == nil {
		return ""
	}
	return *r.MetricName
}

type CreateRule struct {
	SheetIntegrationID string  `json:"sheet_integration_id"`
	Name               string  `json:"name"`
	RuleType           string  `json:"rule_type"`
	CronSchedule       string  `json:"cron_schedule"`
	TargetColumn       string  `json:"target_column"`
	MetricName         *string `json:"metric_name"`
	PromptText         string  `json:"prompt_text"`
	IsActive           bool    `json:"is_active"`
}

// RulePatch is a partial update; nil fields are left out of the body.
type RulePatch struct {
	Name         *string `json:"name,omitempty"`
	CronSchedule *string `json:"cron_schedule,omitempty"`
	PromptText   *string `json:"prompt_text,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type ColumnHeader struct {
	Column string `json:"column"`
	Name   string `json:"name"`
}

type Sheet struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	GoogleSheetID  string  `json:"google_sheet_id"`
	SheetName      string  `json:"sheet_name"`
	IsActive       bool    `json:"is_active"`
	TokenExpiresAt *string `json:"token_expires_at,omitempty"`
	DisplayName    *string `json:"display_name,omitempty"`
}

// Label is the display name when set, otherwise the sheet name.
func (s Sheet) Label() string {
	if s.DisplayName != nil && *s.DisplayName != "" {
		return *s.DisplayName
	}
	return s.SheetName
}

type SheetPreview struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// AuthURL is returned by endpoints that continue in the browser.
type AuthURL struct {
	URL string `json:"auth_url"`
}

type MissedTask struct {
	Row      int    `json:"row"`
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
}

type WarlordDebug struct {
	Today       string       `json:"today"`
	RawRows     [][]string   `json:"raw_rows"`
	MissedTasks []MissedTask `json:"missed_tasks"`
}

type Interaction struct {
	ID             string  `json:"id"`
	TrackerRuleID  *string `json:"tracker_rule_id"`
	Direction      string  `json:"direction"`
	Channel        string  `json:"channel"`
	MessageContent *string `json:"message_content"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

type DashboardSummary struct {
	HealthRulesActive  int  `json:"health_rules_active"`
	WarlordRulesActive int  `json:"warlord_rules_active"`
	SheetsConnected    int  `json:"sheets_connected"`
	HasWhatsApp        bool `json:"has_whatsapp"`
	RecentInteractions int  `json:"recent_interactions"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"display_name"`
	PictureURL       string `json:"picture_url,omitempty"`
	WhatsAppPhone    string `json:"whatsapp_phone,omitempty"`
	WhatsAppVerified bool   `json:"whatsapp_verified"`
	IsActive         bool   `json:"is_active"`
}
