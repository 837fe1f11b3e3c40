package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spclub/api/internal/models"
	"spclub/api/internal/repository"
)

type fakeRegistrationStore struct {
	byID       map[string]models.Registration
	lastFilter repository.ListFilter
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{byID: make(map[string]models.Registration)}
}

func (f *fakeRegistrationStore) Create(_ context.Context, reg models.Registration) error {
	for _, existing := range f.byID {
		if existing.AadharNumber == reg.AadharNumber {
			return repository.ErrDuplicateAadhar
		}
	}
	f.byID[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationStore) ExistsByAadhar(_ context.Context, aadharNumber string) (bool, error) {
	for _, reg := range f.byID {
		if reg.AadharNumber == aadharNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationStore) GetByID(_ context.Context, id string) (models.Registration, error) {
	reg, ok := f.byID[id]
	if !ok {
		return models.Registration{}, repository.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRegistrationStore) Approve(_ context.Context, id string, adminID string, at time.Time) (models.Registration, error) {
	reg, ok := f.byID[id]
	if !ok {
		return models.Registration{}, repository.ErrRegistrationNotFound
	}
	if reg.Status == models.RegistrationStatusApproved {
		return models.Registration{}, repository.ErrAlreadyApproved
	}
	reg.Status = models.RegistrationStatusApproved
	reg.ApprovedBy = &adminID
	reg.ApprovedAt = &at
	reg.RejectedAt = nil
	reg.RejectionReason = nil
	f.byID[id] = reg
	return reg, nil
}

func (f *fakeRegistrationStore) Reject(_ context.Context, id string, reason string, at time.Time) (models.Registration, error) {
	reg, ok := f.byID[id]
	if !ok {
		return models.Registration{}, repository.ErrRegistrationNotFound
	}
	if reg.Status == models.RegistrationStatusRejected {
		return models.Registration{}, repository.ErrAlreadyRejected
	}
	reg.Status = models.RegistrationStatusRejected
	reg.RejectedAt = &at
	reg.RejectionReason = &reason
	reg.ApprovedBy = nil
	reg.ApprovedAt = nil
	f.byID[id] = reg
	return reg, nil
}

func (f *fakeRegistrationStore) DeleteByID(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrRegistrationNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRegistrationStore) List(_ context.Context, filter repository.ListFilter) ([]models.Registration, int, error) {
	f.lastFilter = filter
	var all []models.Registration
	for _, reg := range f.byID {
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		all = append(all, reg)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisteredAt.After(all[j].RegisteredAt) })

	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (f *fakeRegistrationStore) StatusCounts(_ context.Context) (map[models.RegistrationStatus]int, error) {
	counts := make(map[models.RegistrationStatus]int)
	for _, reg := range f.byID {
		counts[reg.Status]++
	}
	return counts, nil
}

func (f *fakeRegistrationStore) Recent(_ context.Context, limit int) ([]models.Registration, error) {
	var all []models.Registration
	for _, reg := range f.byID {
		all = append(all, reg)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisteredAt.After(all[j].RegisteredAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type recordingNotifier struct {
	approved chan models.Registration
	rejected chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		approved: make(chan models.Registration, 1),
		rejected: make(chan string, 1),
	}
}

func (n *recordingNotifier) NotifyApproved(reg models.Registration) { n.approved <- reg }

func (n *recordingNotifier) NotifyRejected(_ models.Registration, reason string) {
	n.rejected <- reason
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		Name:         "Asha Verma",
		FathersName:  "Ramesh Verma",
		Email:        "Asha.Verma@Example.COM",
		Phone:        "9876543210",
		Gender:       "female",
		DateOfBirth:  "2010-06-15",
		BloodGroup:   "B+",
		AadharNumber: "123412341234",
		AadharFront:  "http://store/docs/front.jpg",
		AadharBack:   "http://store/docs/back.jpg",
		PhotoURL:     "http://store/docs/photo.jpg",
		Role:         "player",
		AgeGroup:     "14-16",
		Positions:    []string{"midfielder"},
		ClubDetails:  "SP Club junior squad",
		Terms:        true,
	}
}

func newTestRegistrationService(store *fakeRegistrationStore, notifier Notifier, now time.Time) *RegistrationService {
	svc := NewRegistrationService(store, notifier, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubmitCreatesPendingRegistration(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, now)

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, "asha.verma@example.com", reg.Email)
	assert.Equal(t, now, reg.RegisteredAt)
	assert.Nil(t, reg.ApprovedBy)
}

func TestSubmitRejectsMissingTerms(t *testing.T) {
	t.Parallel()

	svc := newTestRegistrationService(newFakeRegistrationStore(), nil, time.Now())
	input := validSubmitInput()
	input.Terms = false

	_, err := svc.Submit(context.Background(), input)
	assert.ErrorIs(t, err, ErrTermsNotAccepted)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	svc := newTestRegistrationService(newFakeRegistrationStore(), nil, time.Now())
	input := validSubmitInput()
	input.AadharFront = ""
	input.BloodGroup = "Z+"

	_, err := svc.Submit(context.Background(), input)
	require.Error(t, err)

	var fieldErrs validation.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "AadharFront")
	assert.Contains(t, fieldErrs, "BloodGroup")
}

func TestSubmitRejectsDuplicateAadhar(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	_, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	dup := validSubmitInput()
	dup.Email = "other@example.com"
	_, err = svc.Submit(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateAadhar)
}

func TestApproveSendsNotification(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeRegistrationStore()
	notifier := newRecordingNotifier()
	svc := newTestRegistrationService(store, notifier, now)

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), reg.ID, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)

	select {
	case sent := <-notifier.approved:
		assert.Equal(t, reg.ID, sent.ID)
	case <-time.After(time.Second):
		t.Fatal("approval notification never sent")
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), reg.ID, "admin-1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), reg.ID, "admin-2")
	assert.ErrorIs(t, err, repository.ErrAlreadyApproved)
}

func TestApproveUnknownRegistration(t *testing.T) {
	t.Parallel()

	svc := newTestRegistrationService(newFakeRegistrationStore(), nil, time.Now())
	_, err := svc.Approve(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)
}

func TestRejectRequiresReason(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), reg.ID, "   ", "admin-1")
	assert.ErrorIs(t, err, ErrEmptyRejectionReason)
}

func TestRejectThenApproveClearsRejectionState(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), reg.ID, "incomplete documents", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "incomplete documents", *rejected.RejectionReason)

	approved, err := svc.Approve(context.Background(), reg.ID, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusApproved, approved.Status)
	assert.Nil(t, approved.RejectedAt)
	assert.Nil(t, approved.RejectionReason)
}

func TestApproveThenRejectClearsApprovalState(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), reg.ID, "admin-1")
	require.NoError(t, err)
	require.NotNil(t, approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	rejected, err := svc.Reject(context.Background(), reg.ID, "membership fee unpaid", "admin-2")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedBy)
	assert.Nil(t, rejected.ApprovedAt)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "membership fee unpaid", *rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
}

func TestDeleteReturnsRemovedRecord(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	reg, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Name, deleted.Name)

	_, err = svc.Get(context.Background(), reg.ID)
	assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)
}

func TestListCapsPageSize(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	_, err := svc.List(context.Background(), ListParams{Status: "all", PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, store.lastFilter.Limit)

	_, err = svc.List(context.Background(), ListParams{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, store.lastFilter.Limit)
}

func TestListStatusAllDropsFilter(t *testing.T) {
	t.Parallel()

	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, time.Now())

	_, err := svc.List(context.Background(), ListParams{Status: "all"})
	require.NoError(t, err)
	assert.Empty(t, store.lastFilter.Status)

	_, err = svc.List(context.Background(), ListParams{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusRejected, store.lastFilter.Status)
}

func TestBirthYearRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		band    string
		minYear int
		maxYear int
	}{
		{"under-10", 2017, 2026},
		{"10-14", 2013, 2016},
		{"14-16", 2011, 2012},
		{"16-19", 2008, 2010},
		{"19-25", 2002, 2007},
		{"over-25", 0, 2001},
		{"", 0, 0},
		{"not-a-band", 0, 0},
	}

	for _, tc := range tests {
		minYear, maxYear := birthYearRange(tc.band, now)
		assert.Equal(t, tc.minYear, minYear, "band %q min", tc.band)
		assert.Equal(t, tc.maxYear, maxYear, "band %q max", tc.band)
	}
}

func TestStatsAggregatesCounts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeRegistrationStore()
	svc := newTestRegistrationService(store, nil, now)

	for i, aadhar := range []string{"111122223333", "444455556666", "777788889999"} {
		input := validSubmitInput()
		input.AadharNumber = aadhar
		input.Email = "player" + string(rune('a'+i)) + "@example.com"
		svc.now = func() time.Time { return now.Add(time.Duration(i) * time.Minute) }
		_, err := svc.Submit(context.Background(), input)
		require.NoError(t, err)
	}

	var pendingID string
	for id := range store.byID {
		pendingID = id
		break
	}
	_, err := svc.Approve(context.Background(), pendingID, "admin-1")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Rejected)
	assert.Len(t, stats.Recent, 3)
}
