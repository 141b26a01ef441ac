package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"digitalcook/cv-matcher/internal/nlp"
)

type OfferStatus string

const (
	OfferActive   OfferStatus = "active"
	OfferInactive OfferStatus = "inactive"
	OfferDraft    OfferStatus = "draft"
)

type Offer struct {
	ID                     uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                  string      `gorm:"type:text" json:"title"`
	Subtitle               string      `gorm:"type:text" json:"subtitle"`
	Description            string      `gorm:"type:text" json:"description"`
	Responsibilities       string      `gorm:"type:text" json:"responsibilities"`
	RequiredSkills         string      `gorm:"type:text" json:"required_skills"`
	RequiredQualifications string      `gorm:"type:text" json:"required_qualifications"`
	Languages              []string    `gorm:"serializer:json;type:jsonb" json:"languages"`
	Tags                   []string    `gorm:"serializer:json;type:jsonb" json:"tags"`
	Status                 OfferStatus `gorm:"type:text;not null;default:'active';index" json:"status"`
	Company                string      `gorm:"type:text" json:"company"`
	City                   string      `gorm:"type:text" json:"city"`
	Country                string      `gorm:"type:text" json:"country"`
	CompanyLocation        string      `gorm:"type:text" json:"company_location"`
	MinSalary              *float64    `gorm:"type:decimal(12,2)" json:"min_salary,omitempty"`
	MaxSalary              *float64    `gorm:"type:decimal(12,2)" json:"max_salary,omitempty"`
	SalaryCurrency         string      `gorm:"type:text" json:"salary_currency"`
	SalaryPeriod           string      `gorm:"type:text" json:"salary_period"`
	ContractType           string      `gorm:"type:text" json:"contract_type"`
	WorkingTime            string      `gorm:"type:text" json:"working_time"`
	WorkMode               string      `gorm:"type:text" json:"work_mode"`
	IsDeleted              bool        `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt              time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

// OfferSnapshot is the read-only view of an offer used for scoring.
type OfferSnapshot struct {
	ID                 string
	Title              string
	Subtitle           string
	Description        string
	Responsibilities   string
	SkillsText         string
	QualificationsText string
	Skills             []string
	Languages          []string
	LanguageEntries    []string
	Tags               []string
	Company            string
	City               string
	Country            string
	CompanyLocation    string
	MinSalary          *float64
	MaxSalary          *float64
	SalaryCurrency     string
	SalaryPeriod       string
	ContractType       string
	WorkingTime        string
	WorkMode           string
}

func (o Offer) Snapshot() OfferSnapshot {
	return OfferSnapshot{
		ID:                 o.ID.String(),
		Title:              o.Title,
		Subtitle:           o.Subtitle,
		Description:        o.Description,
		Responsibilities:   o.Responsibilities,
		SkillsText:         o.RequiredSkills,
		QualificationsText: o.RequiredQualifications,
		Skills:             SplitSkills(o.RequiredSkills),
		Languages:          nlp.NormalizeLanguages(o.Languages),
		LanguageEntries:    o.Languages,
		Tags:               o.Tags,
		Company:            o.Company,
		City:               o.City,
		Country:            o.Country,
		CompanyLocation:    o.CompanyLocation,
		MinSalary:          o.MinSalary,
		MaxSalary:          o.MaxSalary,
		SalaryCurrency:     o.SalaryCurrency,
		SalaryPeriod:       o.SalaryPeriod,
		ContractType:       o.ContractType,
		WorkingTime:        o.WorkingTime,
		WorkMode:           o.WorkMode,
	}
}

// Document is the offer text compared against the candidate's experience.
func (s OfferSnapshot) Document() string {
	return strings.Join([]string{
		s.Title,
		s.Subtitle,
		PlainText(s.Description),
		PlainText(s.Responsibilities),
		s.SkillsText,
		PlainText(s.QualificationsText),
	}, " ")
}

var skillSeparators = regexp.MustCompile(`[;,\n]`)

// SplitKeywords splits a required-skills block on commas, semicolons and newlines,
// keeping the original case.
func SplitKeywords(block string) []string {
	var out []string
	for _, part := range skillSeparators.Split(block, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSkills is the lower-cased, deduplicated set of SplitKeywords.
func SplitSkills(block string) []string {
	return nlp.StringSet(SplitKeywords(block), nlp.NormalizeText)
}

// PlainText strips HTML markup that offer editors store in rich-text fields.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func (s OfferSnapshot) Summary() OfferSummary {
	return OfferSummary{
		ID:              s.ID,
		Title:           s.Title,
		Company:         s.Company,
		City:            s.City,
		Country:         s.Country,
		CompanyLocation: s.CompanyLocation,
		MinSalary:       s.MinSalary,
		MaxSalary:       s.MaxSalary,
		SalaryCurrency:  s.SalaryCurrency,
		SalaryPeriod:    s.SalaryPeriod,
		MinSalaryText:   FormatSalary(s.MinSalary, s.SalaryCurrency),
		MaxSalaryText:   FormatSalary(s.MaxSalary, s.SalaryCurrency),
		ContractType:    s.ContractType,
		WorkingTime:     s.WorkingTime,
		WorkMode:        s.WorkMode,
	}
}

// FormatSalary renders "<amount> <currency>", or "" when either part is missing or zero.
func FormatSalary(amount *float64, currency string) string {
	if amount == nil || *amount == 0 || currency == "" {
		return ""
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64) + " " + currency
}
