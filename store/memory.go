package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"donor-engage-system/models"
)

// Memory is the in-memory Repository used by tests and demo seeds. A single
// mutex serializes every operation, which also gives the join/leave
// serialization the membership invariant needs.
type Memory struct {
	mu sync.RWMutex

	supporters     map[string]*models.Supporter
	supporterOrder []string

	contributions []models.Contribution

	referrals []models.Referral

	teams     map[string]*models.Team
	teamOrder []string
	// memberships is keyed by user, the exclusive-membership invariant in
	// map form; team member lists keep join order.
	memberships map[string]string // userID -> teamID
	members     map[string][]models.TeamMember

	badges map[string]map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		supporters:  make(map[string]*models.Supporter),
		teams:       make(map[string]*models.Team),
		memberships: make(map[string]string),
		members:     make(map[string][]models.TeamMember),
		badges:      make(map[string]map[string]time.Time),
	}
}

func (m *Memory) CreateSupporter(_ context.Context, s *models.Supporter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ReferralCode == "" {
		s.ReferralCode = models.ReferralCodeFor(s.ID)
	}
	cp := *s
	m.supporters[s.ID] = &cp
	m.supporterOrder = append(m.supporterOrder, s.ID)
	return nil
}

func (m *Memory) GetSupporter(_ context.Context, id string) (*models.Supporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.supporters[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: "supporter", ID: id}
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) GetSupporterByReferralCode(_ context.Context, code string) (*models.Supporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.supporterOrder {
		if m.supporters[id].ReferralCode == code {
			cp := *m.supporters[id]
			return &cp, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "supporter", ID: code}
}

func (m *Memory) ListSupporters(_ context.Context) ([]models.Supporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Supporter, 0, len(m.supporterOrder))
	for _, id := range m.supporterOrder {
		out = append(out, *m.supporters[id])
	}
	return out, nil
}

func (m *Memory) AddPoints(_ context.Context, userID string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.supporters[userID]
	if !ok {
		return &models.NotFoundError{Kind: "supporter", ID: userID}
	}
	s.TotalPoints += delta
	return nil
}

func (m *Memory) SetTotalPoints(_ context.Context, userID string, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.supporters[userID]
	if !ok {
		return &models.NotFoundError{Kind: "supporter", ID: userID}
	}
	s.TotalPoints = total
	return nil
}

func (m *Memory) CreateContribution(_ context.Context, c *models.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.contributions = append(m.contributions, *c)
	return nil
}

func (m *Memory) UpsertContribution(_ context.Context, c *models.Contribution) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.contributions {
		if existing.ID == c.ID {
			return false, nil
		}
	}
	m.contributions = append(m.contributions, *c)
	return true, nil
}

func (m *Memory) ListContributions(_ context.Context, userID string) ([]models.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Contribution
	for _, c := range m.contributions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ListAllContributions(_ context.Context) ([]models.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Contribution, len(m.contributions))
	copy(out, m.contributions)
	return out, nil
}

func (m *Memory) SaveReferral(_ context.Context, r *models.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for i := range m.referrals {
		if m.referrals[i].ID == r.ID {
			m.referrals[i] = *r
			return nil
		}
	}
	m.referrals = append(m.referrals, *r)
	return nil
}

func (m *Memory) FindReferral(_ context.Context, referredID, code string) (*models.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.referrals {
		if r.ReferredID == referredID && r.Code == code {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListReferrals(_ context.Context, referrerID string) ([]models.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Referral
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) CreateTeam(_ context.Context, t *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	cp.Members = nil
	m.teams[t.ID] = &cp
	m.teamOrder = append(m.teamOrder, t.ID)
	return nil
}

func (m *Memory) GetTeam(_ context.Context, id string) (*models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.teamLocked(id)
}

// teamLocked assembles a team snapshot with its ordered member list. Caller
// holds at least a read lock.
func (m *Memory) teamLocked(id string) (*models.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: "team", ID: id}
	}
	cp := *t
	cp.Members = append([]models.TeamMember(nil), m.members[id]...)
	return &cp, nil
}

func (m *Memory) ListTeams(_ context.Context) ([]models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Team, 0, len(m.teamOrder))
	for _, id := range m.teamOrder {
		t, err := m.teamLocked(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *Memory) DeleteTeam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.teams[id]; !ok {
		return &models.NotFoundError{Kind: "team", ID: id}
	}
	for _, mem := range m.members[id] {
		delete(m.memberships, mem.UserID)
		if s, ok := m.supporters[mem.UserID]; ok {
			s.TeamID = nil
		}
	}
	delete(m.members, id)
	delete(m.teams, id)
	for i, tid := range m.teamOrder {
		if tid == id {
			m.teamOrder = append(m.teamOrder[:i], m.teamOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) SetLeader(_ context.Context, teamID, leaderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return &models.NotFoundError{Kind: "team", ID: teamID}
	}
	if m.memberships[leaderID] != teamID {
		return &models.NotAMemberError{UserID: leaderID}
	}
	t.LeaderID = leaderID
	return nil
}

func (m *Memory) GetMembership(_ context.Context, userID string) (*models.TeamMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	teamID, ok := m.memberships[userID]
	if !ok {
		return nil, nil
	}
	for _, mem := range m.members[teamID] {
		if mem.UserID == userID {
			cp := mem
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) AddMember(_ context.Context, teamID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.teams[teamID]; !ok {
		return &models.NotFoundError{Kind: "team", ID: teamID}
	}
	if existing, ok := m.memberships[userID]; ok {
		return &models.AlreadyMemberError{UserID: userID, TeamID: existing}
	}
	m.memberships[userID] = teamID
	m.members[teamID] = append(m.members[teamID], models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	})
	if s, ok := m.supporters[userID]; ok {
		tid := teamID
		s.TeamID = &tid
	}
	return nil
}

func (m *Memory) RemoveMember(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	teamID, ok := m.memberships[userID]
	if !ok {
		return &models.NotAMemberError{UserID: userID}
	}
	delete(m.memberships, userID)
	mems := m.members[teamID]
	for i, mem := range mems {
		if mem.UserID == userID {
			m.members[teamID] = append(mems[:i], mems[i+1:]...)
			break
		}
	}
	if s, ok := m.supporters[userID]; ok {
		s.TeamID = nil
	}
	return nil
}

func (m *Memory) AwardBadge(_ context.Context, userID, badgeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned, ok := m.badges[userID]
	if !ok {
		owned = make(map[string]time.Time)
		m.badges[userID] = owned
	}
	if _, has := owned[badgeID]; has {
		return false, nil
	}
	owned[badgeID] = time.Now().UTC()
	return true, nil
}

func (m *Memory) ListBadges(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := m.badges[userID]
	out := make([]string, 0, len(owned))
	for id := range owned {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

var _ Repository = (*Memory)(nil)
