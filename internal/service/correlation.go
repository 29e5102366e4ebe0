package service

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
)

var ErrNetworkNotFound = errors.New("network not found")

const commonWordsLimit = 20

var wordPattern = regexp.MustCompile(`\w{3,}`)

// CorrelationEngine discovers cases that reference the same identity tokens
// and maintains the resulting network clusters.
type CorrelationEngine interface {
	// FindRelated gathers tokens from the case and its evidence and returns
	// every other case matched through the token index or a substring hit on
	// case or evidence text. A case with no extractable tokens yields an
	// empty set; that is normal, not an error.
	FindRelated(caseID int64) (*models.RelatedSet, error)
	// Correlate is FindRelated followed by index maintenance and network
	// linking in one serialized run per case.
	Correlate(caseID int64, actorID *int64) (*models.RelatedSet, error)
	// LinkNetwork folds the case and its related cases into one network,
	// creating it if the case is unlinked. Related cases already in another
	// network bring their whole network along (transitive merge).
	LinkNetwork(caseID int64, related []*models.Case) (string, error)
	NetworkDetails(networkUID string) (*models.NetworkDetails, error)
	CommonPatterns(networkUID string) (*models.CommonPatterns, error)
}

type correlationEngine struct {
	cases      repository.CaseRepository
	evidence   repository.EvidenceRepository
	networks   repository.NetworkRepository
	tokens     repository.TokenRepository
	tx         repository.TxManager
	audit      AuditSink
	maxDisplay int
	logger     *zap.Logger
}

func NewCorrelationEngine(
	cases repository.CaseRepository,
	evidence repository.EvidenceRepository,
	networks repository.NetworkRepository,
	tokens repository.TokenRepository,
	tx repository.TxManager,
	audit AuditSink,
	maxDisplay int,
	logger *zap.Logger,
) CorrelationEngine {
	return &correlationEngine{
		cases:      cases,
		evidence:   evidence,
		networks:   networks,
		tokens:     tokens,
		tx:         tx,
		audit:      audit,
		maxDisplay: maxDisplay,
		logger:     logger,
	}
}

func (e *correlationEngine) FindRelated(caseID int64) (*models.RelatedSet, error) {
	c, err := e.cases.GetCaseByID(caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case %d: %w", caseID, err)
	}

	tokens, err := e.caseTokens(c)
	if err != nil {
		return nil, err
	}

	related, err := e.relatedCases(caseID, tokens)
	if err != nil {
		return nil, err
	}

	rs := &models.RelatedSet{
		CaseID:          caseID,
		ExtractedTokens: tokens,
		All:             related,
		RelatedCount:    len(related),
	}
	if len(related) > e.maxDisplay {
		rs.RelatedCases = related[:e.maxDisplay]
	} else {
		rs.RelatedCases = related
	}
	return rs, nil
}

// caseTokens extracts the identity tokens referenced by the case's own text
// and by every evidence item attached to it.
func (e *correlationEngine) caseTokens(c *models.Case) ([]string, error) {
	texts := []string{c.Title, c.Description}

	items, err := e.evidence.ListEvidenceByCase(c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence for case %d: %w", c.ID, err)
	}
	for _, item := range items {
		if item.Description != nil {
			texts = append(texts, *item.Description)
		}
		if item.URL != nil {
			texts = append(texts, *item.URL)
		}
	}

	return ExtractTokens(strings.Join(texts, " ")), nil
}

// relatedCases unions index hits and substring hits for every token,
// de-duplicated by case id, newest first.
func (e *correlationEngine) relatedCases(caseID int64, tokens []string) ([]*models.Case, error) {
	seen := make(map[int64]struct{})
	var related []*models.Case

	add := func(c *models.Case) {
		if _, ok := seen[c.ID]; ok {
			return
		}
		seen[c.ID] = struct{}{}
		related = append(related, c)
	}

	for _, token := range tokens {
		ids, err := e.tokens.CaseIDsByToken(token, caseID)
		if err != nil {
			return nil, fmt.Errorf("token index lookup for %q failed: %w", token, err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			c, err := e.cases.GetCaseByID(id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return nil, fmt.Errorf("failed to load indexed case %d: %w", id, err)
			}
			add(c)
		}

		byText, err := e.cases.SearchCasesByText(token, caseID)
		if err != nil {
			return nil, fmt.Errorf("case text search for %q failed: %w", token, err)
		}
		for _, c := range byText {
			add(c)
		}

		byEvidence, err := e.cases.SearchCasesByEvidenceText(token, caseID)
		if err != nil {
			return nil, fmt.Errorf("evidence text search for %q failed: %w", token, err)
		}
		for _, c := range byEvidence {
			add(c)
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].CreatedAt.After(related[j].CreatedAt)
	})
	return related, nil
}

func (e *correlationEngine) Correlate(caseID int64, actorID *int64) (*models.RelatedSet, error) {
	rs, err := e.FindRelated(caseID)
	if err != nil {
		return nil, err
	}

	err = e.tx.Do(func(tx *sqlx.Tx) error {
		// Row lock serializes correlation runs for the same case; runs for
		// different cases interleave freely.
		if err := e.cases.LockCase(tx, caseID); err != nil {
			return fmt.Errorf("failed to lock case %d: %w", caseID, err)
		}

		if err := e.tokens.ReplaceCaseTokens(tx, caseID, rs.ExtractedTokens); err != nil {
			return fmt.Errorf("failed to update token index for case %d: %w", caseID, err)
		}

		if len(rs.All) == 0 {
			return nil
		}

		uid, err := e.linkLocked(tx, caseID, rs.All)
		if err != nil {
			return err
		}
		rs.NetworkUID = uid
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rs.NetworkUID != "" {
		e.audit.Record(actorID, "CORRELATE", "CASE", &caseID,
			fmt.Sprintf("Case %d linked to network %s with %d related case(s)", caseID, rs.NetworkUID, rs.RelatedCount))
	}
	return rs, nil
}

func (e *correlationEngine) LinkNetwork(caseID int64, related []*models.Case) (string, error) {
	var uid string
	err := e.tx.Do(func(tx *sqlx.Tx) error {
		if err := e.cases.LockCase(tx, caseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCaseNotFound
			}
			return fmt.Errorf("failed to lock case %d: %w", caseID, err)
		}
		var err error
		uid, err = e.linkLocked(tx, caseID, related)
		return err
	})
	return uid, err
}

// linkLocked folds caseID and every related case into one network. Must run
// with the case row locked inside tx.
func (e *correlationEngine) linkLocked(tx *sqlx.Tx, caseID int64, related []*models.Case) (string, error) {
	membership, err := e.networks.MembershipForCase(tx, caseID)
	if err != nil {
		return "", fmt.Errorf("failed to read membership for case %d: %w", caseID, err)
	}

	var target *models.Network
	if membership != nil {
		target, err = e.networks.GetNetworkByID(membership.NetworkID)
		if err != nil {
			return "", fmt.Errorf("failed to load network %d: %w", membership.NetworkID, err)
		}
	} else {
		target = &models.Network{
			NetworkUID:  fmt.Sprintf("NET-%s", strings.ToUpper(uuid.NewString()[:8])),
			Name:        fmt.Sprintf("Network linked to case #%d", caseID),
			Description: fmt.Sprintf("Automatically created from correlation of case #%d", caseID),
		}
		if err := e.networks.CreateNetwork(tx, target); err != nil {
			return "", fmt.Errorf("failed to create network: %w", err)
		}
		if err := e.networks.AddMembership(tx, caseID, target.ID); err != nil {
			return "", fmt.Errorf("failed to link case %d: %w", caseID, err)
		}
	}

	for _, rc := range related {
		m, err := e.networks.MembershipForCase(tx, rc.ID)
		if err != nil {
			return "", fmt.Errorf("failed to read membership for case %d: %w", rc.ID, err)
		}
		switch {
		case m == nil:
			if err := e.networks.AddMembership(tx, rc.ID, target.ID); err != nil {
				return "", fmt.Errorf("failed to link case %d: %w", rc.ID, err)
			}
		case m.NetworkID != target.ID:
			// A bridging case: the related case's whole network merges into
			// the target so the partition stays transitively closed.
			if err := e.networks.ReassignMemberships(tx, m.NetworkID, target.ID); err != nil {
				return "", fmt.Errorf("failed to merge network %d into %d: %w", m.NetworkID, target.ID, err)
			}
			if err := e.networks.DeleteNetwork(tx, m.NetworkID); err != nil {
				return "", fmt.Errorf("failed to delete merged network %d: %w", m.NetworkID, err)
			}
			e.logger.Info("Merged networks",
				zap.Int64("from_network_id", m.NetworkID),
				zap.Int64("into_network_id", target.ID),
				zap.Int64("bridging_case_id", rc.ID))
		}
	}

	return target.NetworkUID, nil
}

func (e *correlationEngine) NetworkDetails(networkUID string) (*models.NetworkDetails, error) {
	n, err := e.networks.GetNetworkByUID(networkUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNetworkNotFound
		}
		return nil, fmt.Errorf("failed to load network %s: %w", networkUID, err)
	}

	cases, err := e.networks.MemberCases(n.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of network %s: %w", networkUID, err)
	}

	details := &models.NetworkDetails{
		Network:            n,
		Cases:              cases,
		TotalCases:         len(cases),
		ViolationTypes:     make(map[string]int),
		StatusDistribution: make(map[string]int),
	}
	for _, c := range cases {
		details.ViolationTypes[c.ViolationType]++
		details.StatusDistribution[c.Status]++
	}
	return details, nil
}

func (e *correlationEngine) CommonPatterns(networkUID string) (*models.CommonPatterns, error) {
	n, err := e.networks.GetNetworkByUID(networkUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNetworkNotFound
		}
		return nil, fmt.Errorf("failed to load network %s: %w", networkUID, err)
	}

	texts, err := e.networks.NetworkTexts(n.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to gather texts for network %s: %w", networkUID, err)
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
			counts[word]++
		}
	}

	words := make([]models.WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, models.WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if len(words) > commonWordsLimit {
		words = words[:commonWordsLimit]
	}

	return &models.CommonPatterns{
		CommonWords:        words,
		SharedUsernames:    ExtractTokens(strings.Join(texts, " ")),
		TotalTextsAnalyzed: len(texts),
	}, nil
}
