package database

import (
	"context"
	"strconv"
	"time"

	"github.com/JustJay7/fir-manager/internal/workflow"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin         Role = "admin"
	RolePoliceOfficer Role = "police_officer"
)

// Priority levels for an FIR
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Evidence types
const (
	EvidencePhoto    = "photo"
	EvidenceVideo    = "video"
	EvidenceAudio    = "audio"
	EvidenceDocument = "document"
	EvidenceOther    = "other"
)

type Station struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:100;not null"`
	Location      string `json:"location" gorm:"size:200"`
	ContactNumber string `json:"contact_number" gorm:"size:20"`
}

type User struct {
	gorm.Model
	Username  string   `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FullName  string   `json:"full_name" gorm:"size:150"`
	Email     string   `json:"email" gorm:"size:254"`
	Role      Role     `json:"role" gorm:"size:20;not null;index"`
	StationID *uint    `json:"station_id"`
	Station   *Station `json:"station,omitempty" gorm:"foreignKey:StationID;constraint:OnDelete:SET NULL"`
	Active    bool     `json:"active" gorm:"not null;default:true"`
}

// FIR is the aggregate root for evidence, witnesses, hearings, notes and suggestions
type FIR struct {
	gorm.Model
	FIRNumber             string          `json:"fir_number" gorm:"column:fir_number;size:50;uniqueIndex;not null"`
	ComplainantName       string          `json:"complainant_name" gorm:"size:100;not null"`
	ComplainantContact    string          `json:"complainant_contact" gorm:"size:20"`
	IncidentDescription   string          `json:"incident_description" gorm:"type:text"`
	IncidentDate          datatypes.Date  `json:"incident_date"`
	IncidentLocation      string          `json:"incident_location" gorm:"size:200"`
	Status                workflow.Status `json:"status" gorm:"size:20;not null;default:draft;index"`
	Priority              string          `json:"priority" gorm:"size:10;not null;default:medium"`
	InvestigationDeadline *time.Time      `json:"investigation_deadline"`

	OfficerID uint    `json:"officer_id" gorm:"not null;index"`
	Officer   User    `json:"officer" gorm:"foreignKey:OfficerID;constraint:OnDelete:RESTRICT"`
	StationID uint    `json:"station_id" gorm:"not null;index"`
	Station   Station `json:"station" gorm:"foreignKey:StationID;constraint:OnDelete:RESTRICT"`

	Team              []TeamMember        `json:"team" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
	LegalSuggestions  []LegalSuggestion   `json:"legal_suggestions,omitempty" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
	Evidence          []Evidence          `json:"evidence,omitempty" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
	Witnesses         []Witness           `json:"witnesses,omitempty" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
	Hearings          []CourtHearing      `json:"hearings,omitempty" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
	Notes             []InvestigationNote `json:"notes,omitempty" gorm:"foreignKey:FIRID;constraint:OnDelete:CASCADE"`
}

// TeamMember assigns an officer to an FIR's investigation team
type TeamMember struct {
	FIRID     uint      `json:"fir_id" gorm:"column:fir_id;primaryKey"`
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	User      User      `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

type LegalSuggestion struct {
	gorm.Model
	FIRID           uint    `json:"fir_id" gorm:"column:fir_id;not null;index"`
	IPCSection      string  `json:"ipc_section" gorm:"column:ipc_section;size:50;not null"`
	ActName         string  `json:"act_name" gorm:"size:100"`
	Description     string  `json:"description" gorm:"type:text"`
	ConfidenceScore float64 `json:"confidence_score" gorm:"not null;default:0"`
}

type Evidence struct {
	gorm.Model
	FIRID                 uint   `json:"fir_id" gorm:"column:fir_id;not null;index"`
	FileRef               string `json:"file_ref" gorm:"size:500;not null"`
	FileName              string `json:"file_name" gorm:"size:255"`
	Size                  int64  `json:"size"`
	EvidenceType          string `json:"evidence_type" gorm:"size:20;not null"`
	Description           string `json:"description" gorm:"type:text"`
	UploadedByID          uint   `json:"uploaded_by_id" gorm:"not null"`
	Transcription         string `json:"transcription,omitempty" gorm:"type:text"`
	TranscriptionLanguage string `json:"transcription_language,omitempty" gorm:"size:20"`
}

type Witness struct {
	gorm.Model
	FIRID        uint   `json:"fir_id" gorm:"column:fir_id;not null;index"`
	Name         string `json:"name" gorm:"size:100;not null"`
	Contact      string `json:"contact" gorm:"size:20"`
	Address      string `json:"address" gorm:"size:255"`
	Statement    string `json:"statement" gorm:"type:text"`
	RecordedByID uint   `json:"recorded_by_id" gorm:"not null"`
}

type CourtHearing struct {
	gorm.Model
	FIRID       uint           `json:"fir_id" gorm:"column:fir_id;not null;index"`
	HearingDate datatypes.Date `json:"hearing_date"`
	CourtName   string         `json:"court_name" gorm:"size:200;not null"`
	JudgeName   string         `json:"judge_name" gorm:"size:100"`
	Purpose     string         `json:"purpose" gorm:"size:200"`
	Outcome     string         `json:"outcome" gorm:"type:text"`
	CreatedByID uint           `json:"created_by_id" gorm:"not null"`
}

type InvestigationNote struct {
	gorm.Model
	FIRID    uint   `json:"fir_id" gorm:"column:fir_id;not null;index"`
	AuthorID uint   `json:"author_id" gorm:"not null"`
	Content  string `json:"content" gorm:"type:text;not null"`
}

type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Message string `json:"message" gorm:"type:text;not null"`
	Link    string `json:"link,omitempty" gorm:"size:200"`
	Read    bool   `json:"read" gorm:"not null;default:false;index"`
}

func (Station) TableName() string {
	return "stations"
}

func (User) TableName() string {
	return "users"
}

func (FIR) TableName() string {
	return "firs"
}

func (TeamMember) TableName() string {
	return "fir_team_members"
}

func (LegalSuggestion) TableName() string {
	return "legal_suggestions"
}

func (Evidence) TableName() string {
	return "evidence"
}

func (Witness) TableName() string {
	return "witnesses"
}

func (CourtHearing) TableName() string {
	return "court_hearings"
}

func (InvestigationNote) TableName() string {
	return "investigation_notes"
}

func (Notification) TableName() string {
	return "notifications"
}

// TeamIDs returns the user IDs of the assigned team
func (f *FIR) TeamIDs() []uint {
	ids := make([]uint, 0, len(f.Team))
	for _, m := range f.Team {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasTeamMember reports whether userID is on the FIR's team
func (f *FIR) HasTeamMember(userID uint) bool {
	for _, m := range f.Team {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsOverdue reports whether an investigation has passed its deadline
func (f *FIR) IsOverdue(now time.Time) bool {
	return f.Status == workflow.UnderInvestigation &&
		f.InvestigationDeadline != nil &&
		f.InvestigationDeadline.Before(now)
}

// DetailLink is the path of the FIR detail view
func (f *FIR) DetailLink() string {
	return "/firs/" + strconv.FormatUint(uint64(f.ID), 10)
}

// FindFIR loads an FIR with its team. It returns gorm.ErrRecordNotFound
// when the FIR does not exist.
func FindFIR(ctx context.Context, db *gorm.DB, id uint) (*FIR, error) {
	var fir FIR
	if err := db.WithContext(ctx).Preload("Team").First(&fir, id).Error; err != nil {
		return nil, err
	}
	return &fir, nil
}
