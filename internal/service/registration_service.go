package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog"

	"spclub/api/internal/ids"
	"spclub/api/internal/models"
	"spclub/api/internal/repository"
)

var (
	ErrEmptyRejectionReason = errors.New("rejection reason is required")
	ErrTermsNotAccepted     = errors.New("terms and conditions must be accepted")
)

const (
	maxPageSize     = 100
	defaultPageSize = 10
)

var bloodGroups = []interface{}{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
var genders = []interface{}{"male", "female", "other"}

// RegistrationStore is the persistence surface of the lifecycle manager.
// Implemented by repository.RegistrationRepository.
type RegistrationStore interface {
	Create(ctx context.Context, reg models.Registration) error
	ExistsByAadhar(ctx context.Context, aadharNumber string) (bool, error)
	GetByID(ctx context.Context, id string) (models.Registration, error)
	Approve(ctx context.Context, id string, adminID string, at time.Time) (models.Registration, error)
	Reject(ctx context.Context, id string, reason string, at time.Time) (models.Registration, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, filter repository.ListFilter) ([]models.Registration, int, error)
	StatusCounts(ctx context.Context) (map[models.RegistrationStatus]int, error)
	Recent(ctx context.Context, limit int) ([]models.Registration, error)
}

// Notifier delivers lifecycle emails. Satisfied by notify.Mailer.
type Notifier interface {
	NotifyApproved(reg models.Registration)
	NotifyRejected(reg models.Registration, reason string)
}

// RegistrationService owns the pending/approved/rejected state machine.
type RegistrationService struct {
	registrations RegistrationStore
	notifier      Notifier
	log           zerolog.Logger
	now           func() time.Time
}

func NewRegistrationService(registrations RegistrationStore, notifier Notifier, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
	}
}

// SubmitInput carries the applicant's parsed form fields plus the URLs of
// the three already-uploaded documents.
type SubmitInput struct {
	Name        string
	FathersName string
	Email       string
	Phone       string
	ParentPhone string
	Gender      string
	DateOfBirth string
	BloodGroup  string
	Address     string

	AadharNumber string
	AadharFront  string
	AadharBack   string
	PhotoURL     string

	Role        string
	AgeGroup    string
	Positions   []string
	Experience  string
	ClubDetails string
	Message     string
	Newsletter  bool
	Terms       bool
}

func (in SubmitInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.FathersName, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Gender, validation.Required, validation.In(genders...)),
		validation.Field(&in.DateOfBirth, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&in.BloodGroup, validation.Required, validation.In(bloodGroups...)),
		validation.Field(&in.AadharNumber, validation.Required, validation.Length(12, 14)),
		validation.Field(&in.AadharFront, validation.Required),
		validation.Field(&in.AadharBack, validation.Required),
		validation.Field(&in.PhotoURL, validation.Required),
		validation.Field(&in.Role, validation.Required),
		validation.Field(&in.ClubDetails, validation.Required),
	)
}

// Submit creates a pending registration. The identity-document number must
// be unique across all registrations regardless of status.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitInput) (models.Registration, error) {
	if err := input.Validate(); err != nil {
		return models.Registration{}, err
	}
	if !input.Terms {
		return models.Registration{}, ErrTermsNotAccepted
	}

	dob, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return models.Registration{}, validation.Errors{"dob": err}
	}

	aadhar := strings.TrimSpace(input.AadharNumber)
	exists, err := s.registrations.ExistsByAadhar(ctx, aadhar)
	if err != nil {
		return models.Registration{}, err
	}
	if exists {
		return models.Registration{}, repository.ErrDuplicateAadhar
	}

	reg := models.Registration{
		ID:           ids.New(),
		Name:         strings.TrimSpace(input.Name),
		FathersName:  strings.TrimSpace(input.FathersName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        input.Phone,
		ParentPhone:  input.ParentPhone,
		Gender:       input.Gender,
		DateOfBirth:  dob,
		BloodGroup:   input.BloodGroup,
		Address:      input.Address,
		AadharNumber: aadhar,
		AadharFront:  input.AadharFront,
		AadharBack:   input.AadharBack,
		PhotoURL:     input.PhotoURL,
		Role:         input.Role,
		AgeGroup:     input.AgeGroup,
		Positions:    input.Positions,
		Experience:   input.Experience,
		ClubDetails:  input.ClubDetails,
		Message:      input.Message,
		Newsletter:   input.Newsletter,
		Status:       models.RegistrationStatusPending,
		RegisteredAt: s.now(),
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		return models.Registration{}, err
	}

	s.log.Info().Str("registration_id", reg.ID).Str("name", reg.Name).Msg("registration submitted")
	return reg, nil
}

// Approve transitions pending or rejected to approved. Approving twice is an
// explicit conflict, not a no-op. The approval email is fire-and-forget.
func (s *RegistrationService) Approve(ctx context.Context, id string, actingAdminID string) (models.Registration, error) {
	reg, err := s.registrations.Approve(ctx, id, actingAdminID, s.now())
	if err != nil {
		return models.Registration{}, err
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("admin_id", actingAdminID).
		Msg("registration approved")

	if s.notifier != nil {
		go s.notifier.NotifyApproved(reg)
	}
	return reg, nil
}

// Reject transitions pending or approved to rejected, keeping the record.
func (s *RegistrationService) Reject(ctx context.Context, id string, reason string, actingAdminID string) (models.Registration, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Registration{}, ErrEmptyRejectionReason
	}

	reg, err := s.registrations.Reject(ctx, id, reason, s.now())
	if err != nil {
		return models.Registration{}, err
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("admin_id", actingAdminID).
		Msg("registration rejected")

	if s.notifier != nil {
		go s.notifier.NotifyRejected(reg, reason)
	}
	return reg, nil
}

// Delete removes the record permanently, regardless of status. This is an
// administrative override, not a lifecycle transition.
func (s *RegistrationService) Delete(ctx context.Context, id string) (models.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return models.Registration{}, err
	}
	if err := s.registrations.DeleteByID(ctx, id); err != nil {
		return models.Registration{}, err
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("status", string(reg.Status)).
		Msg("registration deleted")
	return reg, nil
}

func (s *RegistrationService) Get(ctx context.Context, id string) (models.Registration, error) {
	return s.registrations.GetByID(ctx, id)
}

type ListParams struct {
	Status   string
	Search   string
	AgeGroup string
	Page     int
	PageSize int
}

type Page struct {
	Items    []models.Registration
	Total    int
	Pages    int
	Current  int
	PageSize int
}

func (s *RegistrationService) List(ctx context.Context, params ListParams) (Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	filter := repository.ListFilter{
		Search: strings.TrimSpace(params.Search),
		Limit:  params.PageSize,
		Offset: (params.Page - 1) * params.PageSize,
	}
	if params.Status != "" && params.Status != "all" {
		filter.Status = models.RegistrationStatus(params.Status)
	}
	filter.MinBirthYear, filter.MaxBirthYear = birthYearRange(params.AgeGroup, s.now())

	items, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	pages := (total + params.PageSize - 1) / params.PageSize
	return Page{
		Items:    items,
		Total:    total,
		Pages:    pages,
		Current:  params.Page,
		PageSize: params.PageSize,
	}, nil
}

// birthYearRange translates an age band into an inclusive birth-year range
// using calendar-year arithmetic (age = current year - birth year). Bands
// are half-open on their upper bound, so "10-14" covers ages 10 through 13.
func birthYearRange(band string, now time.Time) (minYear, maxYear int) {
	year := now.Year()
	switch band {
	case "under-10":
		return year - 9, year
	case "10-14":
		return year - 13, year - 10
	case "14-16":
		return year - 15, year - 14
	case "16-19":
		return year - 18, year - 16
	case "19-25":
		return year - 24, year - 19
	case "over-25":
		return 0, year - 25
	}
	return 0, 0
}

type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
	Recent   []models.Registration
}

func (s *RegistrationService) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.registrations.StatusCounts(ctx)
	if err != nil {
		return Stats{}, err
	}

	recent, err := s.registrations.Recent(ctx, 5)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Pending:  counts[models.RegistrationStatusPending],
		Approved: counts[models.RegistrationStatusApproved],
		Rejected: counts[models.RegistrationStatusRejected],
		Recent:   recent,
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}
