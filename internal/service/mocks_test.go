package service_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type memKey struct{ pod, user int32 }

// memStore is an in-memory repository.Store. ExecTx serializes transactions
// with a mutex and restores a snapshot on error, which mirrors the pod row
// lock plus rollback discipline the postgres store provides.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	pods  map[int32]*domain.Pod
	apps  map[int32]*domain.Application
	mems  map[memKey]*domain.Membership
	users map[int32]*domain.User
	notes []*domain.Notification

	nextPodID  int32
	nextAppID  int32
	nextNoteID int32
}

func newMemStore() *memStore {
	return &memStore{
		pods:  make(map[int32]*domain.Pod),
		apps:  make(map[int32]*domain.Application),
		mems:  make(map[memKey]*domain.Membership),
		users: make(map[int32]*domain.User),
	}
}

func (s *memStore) Pods() repository.PodRepository                   { return &memPodRepo{s} }
func (s *memStore) Applications() repository.ApplicationRepository   { return &memAppRepo{s} }
func (s *memStore) Memberships() repository.MembershipRepository     { return &memMemRepo{s} }
func (s *memStore) Users() repository.UserRepository                 { return &memUserRepo{s} }
func (s *memStore) Notifications() repository.NotificationRepository { return &memNoteRepo{s} }

func (s *memStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapPods, snapApps, snapMems := s.snapshot()
	if err := fn(s); err != nil {
		s.mu.Lock()
		s.pods, s.apps, s.mems = snapPods, snapApps, snapMems
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) snapshot() (map[int32]*domain.Pod, map[int32]*domain.Application, map[memKey]*domain.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pods := make(map[int32]*domain.Pod, len(s.pods))
	for k, v := range s.pods {
		cp := *v
		pods[k] = &cp
	}
	apps := make(map[int32]*domain.Application, len(s.apps))
	for k, v := range s.apps {
		cp := *v
		apps[k] = &cp
	}
	mems := make(map[memKey]*domain.Membership, len(s.mems))
	for k, v := range s.mems {
		cp := *v
		mems[k] = &cp
	}
	return pods, apps, mems
}

// --- pods ---

type memPodRepo struct{ s *memStore }

func (r *memPodRepo) Create(ctx context.Context, p *domain.Pod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPodID++
	p.ID = r.s.nextPodID
	p.CreatedOn = time.Now()
	p.UpdatedOn = p.CreatedOn
	cp := *p
	r.s.pods[p.ID] = &cp
	return nil
}

func (r *memPodRepo) GetByID(ctx context.Context, id int32) (*domain.Pod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *memPodRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Pod, error) {
	return r.GetByID(ctx, id)
}

func (r *memPodRepo) UpdateStatus(ctx context.Context, id int32, status domain.PodStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.pods[id]; ok {
		p.Status = status
		p.UpdatedOn = time.Now()
	}
	return nil
}

func (r *memPodRepo) SetChatChannelRef(ctx context.Context, id int32, channelRef string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.pods[id]; ok {
		p.ChatChannelRef = channelRef
	}
	return nil
}

func (r *memPodRepo) ListByStatus(ctx context.Context, status domain.PodStatus) ([]domain.Pod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pods []domain.Pod
	for _, p := range r.s.pods {
		if p.Status == status {
			pods = append(pods, *p)
		}
	}
	return pods, nil
}

func (r *memPodRepo) ListExpired(ctx context.Context, now time.Time) ([]domain.Pod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pods []domain.Pod
	for _, p := range r.s.pods {
		if p.MeetAt.Before(now) && (p.Status == domain.PodStatusRecruiting || p.Status == domain.PodStatusCompleted) {
			pods = append(pods, *p)
		}
	}
	return pods, nil
}

// --- applications ---

type memAppRepo struct{ s *memStore }

func (r *memAppRepo) Create(ctx context.Context, a *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.apps {
		if existing.PodID == a.PodID && existing.ApplicantID == a.ApplicantID && existing.Status == domain.ApplicationStatusPending {
			return domain.ErrAlreadyApplied(a.PodID, a.ApplicantID)
		}
	}
	r.s.nextAppID++
	a.ID = r.s.nextAppID
	a.Status = domain.ApplicationStatusPending
	a.Hidden = false
	a.AppliedOn = time.Now()
	cp := *a
	r.s.apps[a.ID] = &cp
	return nil
}

func (r *memAppRepo) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *memAppRepo) GetPending(ctx context.Context, podID, applicantID int32) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.apps {
		if a.PodID == podID && a.ApplicantID == applicantID && a.Status == domain.ApplicationStatusPending {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memAppRepo) ListByPod(ctx context.Context, podID int32, includeHidden bool) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var apps []domain.Application
	for _, a := range r.s.apps {
		if a.PodID != podID {
			continue
		}
		if a.Hidden && !includeHidden {
			continue
		}
		apps = append(apps, *a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedOn.After(apps[j].AppliedOn) })
	return apps, nil
}

func (r *memAppRepo) Review(ctx context.Context, id int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound(id)
	}
	if a.Status != domain.ApplicationStatusPending {
		return nil, domain.ErrAlreadyReviewed(id)
	}
	now := time.Now()
	a.Status = decision
	a.ReviewedOn = &now
	a.ReviewerID = &reviewerID
	cp := *a
	return &cp, nil
}

func (r *memAppRepo) Hide(ctx context.Context, id int32) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return false, nil
	}
	a.Hidden = true
	return true, nil
}

func (r *memAppRepo) Delete(ctx context.Context, id int32) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok || a.Status != domain.ApplicationStatusPending {
		return false, nil
	}
	delete(r.s.apps, id)
	return true, nil
}

// --- memberships ---

type memMemRepo struct{ s *memStore }

func (r *memMemRepo) Create(ctx context.Context, m *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.mems[memKey{m.PodID, m.UserID}] = &cp
	return nil
}

func (r *memMemRepo) Get(ctx context.Context, podID, userID int32) (*domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mems[memKey{podID, userID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (r *memMemRepo) CountByPod(ctx context.Context, podID int32) (int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int32
	for k := range r.s.mems {
		if k.pod == podID {
			count++
		}
	}
	return count, nil
}

func (r *memMemRepo) ListByPod(ctx context.Context, podID int32) ([]domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var members []domain.Membership
	for k, m := range r.s.mems {
		if k.pod == podID {
			members = append(members, *m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (r *memMemRepo) Delete(ctx context.Context, podID, userID int32) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.mems[memKey{podID, userID}]; !ok {
		return false, nil
	}
	delete(r.s.mems, memKey{podID, userID})
	return true, nil
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

// --- notifications ---

type memNoteRepo struct{ s *memStore }

func (r *memNoteRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNoteID++
	n.ID = r.s.nextNoteID
	cp := *n
	r.s.notes = append(r.s.notes, &cp)
	return nil
}

func (r *memNoteRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var notes []domain.Notification
	for _, n := range r.s.notes {
		if n.UserID == userID {
			notes = append(notes, *n)
		}
	}
	return notes, int32(len(notes)), nil
}

func (r *memNoteRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notes {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// --- gateway mocks ---

type MockChatGateway struct {
	mock.Mock
}

func (m *MockChatGateway) CreateChannel(ctx context.Context, name string, ownerID int32) (string, error) {
	args := m.Called(ctx, name, ownerID)
	return args.String(0), args.Error(1)
}
func (m *MockChatGateway) AddParticipant(ctx context.Context, channelRef string, userID int32) error {
	args := m.Called(ctx, channelRef, userID)
	return args.Error(0)
}
func (m *MockChatGateway) RemoveParticipant(ctx context.Context, channelRef string, userID int32) error {
	args := m.Called(ctx, channelRef, userID)
	return args.Error(0)
}
func (m *MockChatGateway) RemoveChannel(ctx context.Context, channelRef string) error {
	args := m.Called(ctx, channelRef)
	return args.Error(0)
}

type MockPushGateway struct {
	mock.Mock
}

func (m *MockPushGateway) Notify(ctx context.Context, kind domain.EventKind, podID, actorID, targetID int32, payload map[string]string) error {
	args := m.Called(ctx, kind, podID, actorID, targetID, payload)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendJoinRequestEmail(ctx context.Context, toEmail, toName, podTitle, applicantName string) error {
	args := m.Called(ctx, toEmail, toName, podTitle, applicantName)
	return args.Error(0)
}
func (m *MockEmailSender) SendPodCanceledEmail(ctx context.Context, toEmail, toName, podTitle string) error {
	args := m.Called(ctx, toEmail, toName, podTitle)
	return args.Error(0)
}
