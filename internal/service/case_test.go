package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

var caseUIDPattern = regexp.MustCompile(`^CASE-\d{8}-[0-9A-F]{8}$`)

func TestCreateCase(t *testing.T) {
	f := newFixture()
	svc := NewCaseService(f.cases, f.audit, zap.NewNop())

	actor := int64(7)
	c, err := svc.CreateCase(models.CreateCaseInput{
		Title:         "Impersonation of a public figure",
		Description:   "fake profile at instagram.com/somebody",
		ViolationType: "impersonation",
	}, &actor)
	require.NoError(t, err)

	assert.Regexp(t, caseUIDPattern, c.CaseUID)
	assert.Equal(t, "new", c.Status)
	assert.Equal(t, &actor, c.CreatedBy)
	assert.Contains(t, f.audit.actions, "CREATE")

	loaded, err := svc.GetCaseByUID(c.CaseUID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, loaded.ID)
}

func TestCreateCaseValidation(t *testing.T) {
	f := newFixture()
	svc := NewCaseService(f.cases, f.audit, zap.NewNop())

	_, err := svc.CreateCase(models.CreateCaseInput{Title: "  ", ViolationType: "spam"}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateCase(models.CreateCaseInput{Title: "Valid title"}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetCaseByUIDNotFound(t *testing.T) {
	f := newFixture()
	svc := NewCaseService(f.cases, f.audit, zap.NewNop())

	_, err := svc.GetCaseByUID("CASE-20250101-DEADBEEF")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	_, err = svc.GetCaseByUID("   ")
	assert.ErrorIs(t, err, ErrValidation)
}
