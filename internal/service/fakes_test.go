package service

import (
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
)

// In-memory stand-ins for the sqlx repositories. They ignore the tx argument
// (the real transaction semantics are covered by the repository tests) and
// mirror the database constraints: digest uniqueness, one membership per
// case, idempotent membership inserts.

type fakeTxManager struct{}

func (f *fakeTxManager) Do(fn func(tx *sqlx.Tx) error) error { return fn(nil) }

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) Record(userID *int64, action, entityType string, entityID *int64, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

type fixture struct {
	cases    *fakeCaseRepo
	evidence *fakeEvidenceRepo
	networks *fakeNetworkRepo
	tokens   *fakeTokenRepo
	audit    *fakeAudit
	tx       *fakeTxManager
}

func newFixture() *fixture {
	f := &fixture{
		evidence: &fakeEvidenceRepo{items: make(map[int64]*models.Evidence)},
		networks: &fakeNetworkRepo{
			networks:    make(map[int64]*models.Network),
			memberships: make(map[int64]int64),
		},
		tokens: &fakeTokenRepo{byCase: make(map[int64][]string)},
		audit:  &fakeAudit{},
		tx:     &fakeTxManager{},
	}
	f.cases = &fakeCaseRepo{cases: make(map[int64]*models.Case), evidence: f.evidence}
	f.networks.cases = f.cases
	return f
}

func (f *fixture) addCase(id int64, uid, title, description string) *models.Case {
	c := &models.Case{
		ID:            id,
		CaseUID:       uid,
		Title:         title,
		Description:   description,
		ViolationType: "harassment",
		Status:        "new",
		CreatedAt:     time.Now().Add(time.Duration(id) * time.Second),
	}
	f.cases.cases[id] = c
	return c
}

type fakeCaseRepo struct {
	cases    map[int64]*models.Case
	evidence *fakeEvidenceRepo
	nextID   int64
}

func (r *fakeCaseRepo) CreateCase(c *models.Case) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.cases[c.ID] = c
	return nil
}

func (r *fakeCaseRepo) GetCaseByID(id int64) (*models.Case, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (r *fakeCaseRepo) GetCaseByUID(uid string) (*models.Case, error) {
	for _, c := range r.cases {
		if c.CaseUID == uid {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeCaseRepo) ListCases() ([]*models.Case, error) {
	return r.sorted(r.cases), nil
}

func (r *fakeCaseRepo) LockCase(tx *sqlx.Tx, id int64) error {
	if _, ok := r.cases[id]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

func (r *fakeCaseRepo) SearchCasesByText(token string, excludeID int64) ([]*models.Case, error) {
	matched := make(map[int64]*models.Case)
	for id, c := range r.cases {
		if id == excludeID {
			continue
		}
		text := strings.ToLower(c.Title + " " + c.Description)
		if strings.Contains(text, strings.ToLower(token)) {
			matched[id] = c
		}
	}
	return r.sorted(matched), nil
}

func (r *fakeCaseRepo) SearchCasesByEvidenceText(token string, excludeID int64) ([]*models.Case, error) {
	matched := make(map[int64]*models.Case)
	for _, ev := range r.evidence.items {
		if ev.CaseID == excludeID {
			continue
		}
		var text string
		if ev.Description != nil {
			text += *ev.Description + " "
		}
		if ev.URL != nil {
			text += *ev.URL
		}
		if strings.Contains(strings.ToLower(text), strings.ToLower(token)) {
			if c, ok := r.cases[ev.CaseID]; ok {
				matched[c.ID] = c
			}
		}
	}
	return r.sorted(matched), nil
}

func (r *fakeCaseRepo) sorted(m map[int64]*models.Case) []*models.Case {
	out := make([]*models.Case, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type fakeEvidenceRepo struct {
	items  map[int64]*models.Evidence
	nextID int64
}

func (r *fakeEvidenceRepo) CreateEvidence(tx *sqlx.Tx, ev *models.Evidence) error {
	for _, existing := range r.items {
		if existing.FileHash == ev.FileHash {
			return repository.ErrDuplicateDigest
		}
	}
	r.nextID++
	ev.ID = r.nextID
	ev.UploadedAt = time.Now()
	stored := *ev
	r.items[ev.ID] = &stored
	return nil
}

func (r *fakeEvidenceRepo) GetEvidenceByID(id int64) (*models.Evidence, error) {
	ev, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ev, nil
}

func (r *fakeEvidenceRepo) GetEvidenceByDigest(digest string) (*models.Evidence, error) {
	for _, ev := range r.items {
		if ev.FileHash == digest {
			return ev, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeEvidenceRepo) ListEvidenceByCase(caseID int64) ([]*models.Evidence, error) {
	var out []*models.Evidence
	for _, ev := range r.items {
		if ev.CaseID == caseID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

type fakeNetworkRepo struct {
	networks    map[int64]*models.Network
	memberships map[int64]int64 // case id -> network id
	cases       *fakeCaseRepo
	nextID      int64
}

func (r *fakeNetworkRepo) CreateNetwork(tx *sqlx.Tx, n *models.Network) error {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.networks[n.ID] = n
	return nil
}

func (r *fakeNetworkRepo) GetNetworkByUID(uid string) (*models.Network, error) {
	for _, n := range r.networks {
		if n.NetworkUID == uid {
			return n, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeNetworkRepo) GetNetworkByID(id int64) (*models.Network, error) {
	n, ok := r.networks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return n, nil
}

func (r *fakeNetworkRepo) MembershipForCase(tx *sqlx.Tx, caseID int64) (*models.CaseNetworkMembership, error) {
	netID, ok := r.memberships[caseID]
	if !ok {
		return nil, nil
	}
	return &models.CaseNetworkMembership{CaseID: caseID, NetworkID: netID}, nil
}

func (r *fakeNetworkRepo) AddMembership(tx *sqlx.Tx, caseID, networkID int64) error {
	if existing, ok := r.memberships[caseID]; ok && existing == networkID {
		return nil // ON CONFLICT DO NOTHING
	}
	r.memberships[caseID] = networkID
	return nil
}

func (r *fakeNetworkRepo) ReassignMemberships(tx *sqlx.Tx, fromNetworkID, toNetworkID int64) error {
	for caseID, netID := range r.memberships {
		if netID == fromNetworkID {
			r.memberships[caseID] = toNetworkID
		}
	}
	return nil
}

func (r *fakeNetworkRepo) DeleteNetwork(tx *sqlx.Tx, networkID int64) error {
	delete(r.networks, networkID)
	return nil
}

func (r *fakeNetworkRepo) MemberCases(networkID int64) ([]*models.Case, error) {
	matched := make(map[int64]*models.Case)
	for caseID, netID := range r.memberships {
		if netID == networkID {
			if c, ok := r.cases.cases[caseID]; ok {
				matched[caseID] = c
			}
		}
	}
	return r.cases.sorted(matched), nil
}

func (r *fakeNetworkRepo) NetworkTexts(networkID int64) ([]string, error) {
	var texts []string
	for caseID, netID := range r.memberships {
		if netID != networkID {
			continue
		}
		if c, ok := r.cases.cases[caseID]; ok && c.Description != "" {
			texts = append(texts, c.Description)
		}
		for _, ev := range r.cases.evidence.items {
			if ev.CaseID != caseID {
				continue
			}
			if ev.Description != nil && *ev.Description != "" {
				texts = append(texts, *ev.Description)
			}
			if ev.URL != nil && *ev.URL != "" {
				texts = append(texts, *ev.URL)
			}
		}
	}
	return texts, nil
}

type fakeTokenRepo struct {
	byCase map[int64][]string
}

func (r *fakeTokenRepo) ReplaceCaseTokens(tx *sqlx.Tx, caseID int64, tokens []string) error {
	r.byCase[caseID] = append([]string(nil), tokens...)
	return nil
}

func (r *fakeTokenRepo) CaseIDsByToken(token string, excludeID int64) ([]int64, error) {
	var ids []int64
	for caseID, tokens := range r.byCase {
		if caseID == excludeID {
			continue
		}
		for _, t := range tokens {
			if t == token {
				ids = append(ids, caseID)
				break
			}
		}
	}
	return ids, nil
}

type fakeAuthRepo struct {
	users  map[string]*models.User
	nextID int64
}

func (r *fakeAuthRepo) CreateUser(user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.Username] = user
	return nil
}

func (r *fakeAuthRepo) GetUserByUsername(username string) (*models.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *fakeAuthRepo) GetUserByID(id int64) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeAuthRepo) CountUsers() (int, error) {
	return len(r.users), nil
}
