package placement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/testutil"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

type SessionSuite struct {
	suite.Suite
	logger  *testutil.MockLogger
	session *Session
}

func (s *SessionSuite) SetupTest() {
	s.logger = testutil.NewMockLogger()
	s.session = NewSession(testutil.NewRigidMinimizer(), WithLogger(s.logger), WithCutoff(2))
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) TestRun_WithAttachment() {
	attachment := testutil.FollowupPoints[6]
	res, err := s.session.Run(context.Background(), testutil.WildcardCandidate(), testutil.PlacementHits(), &attachment)
	s.Require().NoError(err)

	s.NotEqual(uuid.Nil, res.ID)
	s.Equal(s.session.ID(), res.ID)
	s.Require().NotNil(res.Scaffold)
	s.Require().NotNil(res.Chimera)
	s.Require().NotNil(res.Positioned)
	s.Equal(5, res.Scaffold.NumAtoms())
	s.Equal(res.Scaffold.Bonds(), res.Chimera.Bonds())
	s.Equal(7, res.Positioned.NumAtoms())
	s.Empty(res.Unmatched)

	s.InDelta(0, molecule.Distance(attachment, res.Positioned.Position(6)), 1e-6)
	for i := 0; i < 5; i++ {
		s.Equal(res.Chimera.Position(i), res.Positioned.Position(i))
	}
	s.Equal([]string{"hitA.2", "hitB.0"}, res.Positioned.Origin(2))

	s.Require().Len(res.Logbook, 2)
	s.Equal(ptypes.StepScaffoldFollowup, res.Logbook[0].Step)
	s.Equal(ptypes.StepFollowupChimera, res.Logbook[1].Step)
	s.Equal(5, res.Logbook[1].MappedAtoms)
	s.False(s.logger.HasMessage("warn", "candidate has a wildcard atom but no attachment point was given"))
}

func (s *SessionSuite) TestRun_WildcardWithoutAttachmentWarns() {
	_, err := s.session.Run(context.Background(), testutil.WildcardCandidate(), testutil.PlacementHits(), nil)
	s.Require().NoError(err)
	s.True(s.logger.HasMessage("warn", "candidate has a wildcard atom but no attachment point was given"))
}

func (s *SessionSuite) TestRun_AttachmentWithoutWildcardIgnored() {
	cand := testutil.Build("plain", []string{"C", "N", "C", "O", "C"}, nil, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}})
	min := testutil.NewRigidMinimizer()
	min.Points = testutil.FollowupPoints[:5]
	session := NewSession(min, WithLogger(s.logger))

	attachment := r3.Vec{X: 10}
	res, err := session.Run(context.Background(), cand, testutil.PlacementHits(), &attachment)
	s.Require().NoError(err)
	s.True(s.logger.HasMessage("warn", "attachment point ignored: candidate has no wildcard atom"))
	for i := 0; i < 5; i++ {
		s.Equal(testutil.FollowupPoints[i], res.Positioned.Position(i))
	}
}

func (s *SessionSuite) TestRun_UnmatchedHitReported() {
	hits := append(testutil.PlacementHits(), testutil.DistantHit("far"))
	res, err := s.session.Run(context.Background(), testutil.WildcardCandidate(), hits, nil)
	s.Require().NoError(err)
	s.Equal([]string{"far"}, res.Unmatched)
	s.Len(res.Hits, 3)
}

func (s *SessionSuite) TestRun_PartialResultOnFailure() {
	cand := testutil.Build("sulfur", []string{"S", "S"}, nil, [][2]int{{0, 1}})
	res, err := s.session.Run(context.Background(), cand, testutil.PlacementHits(), nil)
	s.Require().Error(err)
	s.True(errors.IsMatchingExhausted(err))
	s.Require().NotNil(res)
	s.NotNil(res.Scaffold)
	s.Nil(res.Chimera)
	s.Nil(res.Positioned)
	s.Empty(res.Logbook)
}

func (s *SessionSuite) TestRun_Cancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.session.Run(ctx, testutil.WildcardCandidate(), testutil.PlacementHits(), nil)
	s.True(errors.IsCode(err, errors.ErrCodeCancelled))
}

func (s *SessionSuite) TestCombine() {
	res, err := s.session.Combine(context.Background(), testutil.PlacementHits())
	s.Require().NoError(err)
	s.Equal("hitA-hitB", res.Scaffold.Name)
	s.Nil(res.Chimera)

	sum := res.Summary()
	s.Equal(res.ID.String(), sum.ID)
	s.Equal("hitA-hitB", sum.Name)
	s.Equal([]string{"hitA", "hitB"}, sum.Hits)
	s.Len(sum.Atoms, 5)
	s.Equal([]string{"hitA.2", "hitB.0"}, sum.Atoms[2].Origin)
}

func TestResult_SummaryPrefersPositioned(t *testing.T) {
	res, err := NewSession(testutil.NewRigidMinimizer()).Run(context.Background(), testutil.WildcardCandidate(), testutil.PlacementHits(), nil)
	require.NoError(t, err)
	sum := res.Summary()
	assert.Equal(t, "followup", sum.Name)
	require.Len(t, sum.Atoms, 7)
	assert.Equal(t, molecule.Wildcard, sum.Atoms[6].Element)
	assert.Empty(t, sum.Atoms[6].Origin)
	assert.Len(t, sum.Logbook, 2)
}

//Personal.AI order the ending
