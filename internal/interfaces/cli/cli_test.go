package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/testutil"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

func writeSDF(t *testing.T, name string, recs ...chemio.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, chemio.WriteFile(path, recs))
	return path
}

func hitsFile(t *testing.T) string {
	var recs []chemio.Record
	for _, h := range testutil.PlacementHits() {
		recs = append(recs, chemio.Record{Graph: h})
	}
	return writeSDF(t, "hits.sdf", recs...)
}

func candidate(props map[string]string) chemio.Record {
	return chemio.Record{Graph: testutil.WildcardCandidate(), Props: props}
}

// run executes the root command and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeReport(t *testing.T, out string) ptypes.BatchReport {
	t.Helper()
	var report ptypes.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "fragmenstein", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"combine", "place", "batch", "version"} {
		assert.True(t, names[want], want)
	}
	for _, flag := range []string{"config", "log-level", "output", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fragmenstein "+Version)

	out, err = run(t, "-o", "json", "version")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.Commit)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "-o", "xml", "version")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(newVersionCmd())
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// combine
// ─────────────────────────────────────────────────────────────────────────────

func TestCombine(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "scaffold.sdf")
	out, err := run(t, "-o", "json", "combine", "--hits", hitsFile(t), "--out", outPath)
	require.NoError(t, err)

	report := decodeReport(t, out)
	require.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, "hitA-hitB", report.Outcomes[0].Name)

	recs, err := chemio.ReadFile(outPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 5, recs[0].Graph.NumAtoms())
	assert.Equal(t, "hitA hitB", recs[0].Props[chemio.PropHitNames])
	assert.Equal(t, []string{"hitA.2", "hitB.0"}, recs[0].Graph.Origin(2))
}

func TestCombine_Pairwise(t *testing.T) {
	out, err := run(t, "combine", "--hits", hitsFile(t), "--pairwise")
	require.NoError(t, err)
	assert.Contains(t, out, "hitA-hitB")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "Total: 1  Succeeded: 1  Failed: 0")
}

func TestCombine_MissingHits(t *testing.T) {
	_, err := run(t, "combine", "--hits", filepath.Join(t.TempDir(), "none.sdf"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileAccess))
}

// ─────────────────────────────────────────────────────────────────────────────
// place
// ─────────────────────────────────────────────────────────────────────────────

func TestPlace(t *testing.T) {
	cand := writeSDF(t, "cand.mol", candidate(nil))
	outPath := filepath.Join(t.TempDir(), "placed.sdf")
	out, err := run(t, "-o", "json", "place",
		"--hits", hitsFile(t), "--candidate", cand,
		"--attachment", "-2.2,-1.3,0.5", "--minimize", "--out", outPath)
	require.NoError(t, err)

	report := decodeReport(t, out)
	require.Equal(t, 1, report.Total)
	o := report.Outcomes[0]
	require.Equal(t, ptypes.StatusSucceeded, o.Status, o.Error)
	assert.Equal(t, "followup", o.Name)
	require.NotNil(t, o.Summary)
	assert.NotNil(t, o.Summary.Energy)
	assert.Empty(t, o.Summary.PositionedMolBlock)

	recs, err := chemio.ReadFile(outPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	g := recs[0].Graph
	assert.Equal(t, 7, g.NumAtoms())
	assert.True(t, g.Atoms[6].IsWildcard())
	assert.Equal(t, []string{"hitA.2", "hitB.0"}, g.Origin(2))
	assert.Equal(t, "succeeded", recs[0].Props["status"])
	assert.NotEmpty(t, recs[0].Props["energy"])
}

func TestPlace_Table(t *testing.T) {
	cand := writeSDF(t, "cand.mol", candidate(nil))
	out, err := run(t, "place", "--hits", hitsFile(t), "--candidate", cand)
	require.NoError(t, err)
	assert.Contains(t, out, "followup")
	assert.Contains(t, out, "hitA hitB")
	assert.Contains(t, out, "Total: 1  Succeeded: 1  Failed: 0")
}

func TestPlace_Rejects(t *testing.T) {
	hits := hitsFile(t)
	two := writeSDF(t, "two.sdf", candidate(nil), candidate(nil))
	_, err := run(t, "place", "--hits", hits, "--candidate", two)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	one := writeSDF(t, "one.sdf", candidate(nil))
	_, err = run(t, "place", "--hits", hits, "--candidate", one, "--attachment", "1,2")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = run(t, "place", "--hits", hits)
	assert.Error(t, err)
}

func TestPlace_FailureSetsExitCode(t *testing.T) {
	cand := writeSDF(t, "cand.sdf", candidate(map[string]string{chemio.PropHitNames: "ghost"}))
	_, err := run(t, "place", "--hits", hitsFile(t), "--candidate", cand)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeHitInvalid))
	assert.Equal(t, errors.ExitInput, errors.ExitCode(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// batch
// ─────────────────────────────────────────────────────────────────────────────

func TestBatch(t *testing.T) {
	cands := writeSDF(t, "cands.sdf",
		candidate(map[string]string{chemio.PropHitNames: "hitA,hitB", PropAttachment: "-2.2,-1.3,0.5"}),
		candidate(map[string]string{chemio.PropHitNames: "hitA ghost"}),
		candidate(nil),
	)
	outPath := filepath.Join(t.TempDir(), "placed.sdf")
	out, err := run(t, "-o", "json", "batch",
		"--hits", hitsFile(t), "--candidates", cands, "--concurrency", "2", "--out", outPath)
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, ptypes.StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, string(errors.ErrCodeHitInvalid), report.Outcomes[1].ErrorCode)

	recs, err := chemio.ReadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestBatch_BadConcurrency(t *testing.T) {
	cands := writeSDF(t, "cands.sdf", candidate(nil))
	_, err := run(t, "batch", "--hits", hitsFile(t), "--candidates", cands, "--concurrency", "-1")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"x0434", "x0305", "x1"}, splitNames(" x0434, x0305 x1,"))
	assert.Empty(t, splitNames(""))
}

func TestParseVec(t *testing.T) {
	v, err := parseVec("1.5, -2,3e-1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v.X)
	assert.Equal(t, -2.0, v.Y)
	assert.Equal(t, 0.3, v.Z)

	for _, bad := range []string{"", "1,2", "a,b,c", "1,2,3,4"} {
		_, err := parseVec(bad)
		assert.Error(t, err, bad)
	}
}

func TestTaskFromRecord(t *testing.T) {
	rec := candidate(map[string]string{chemio.PropHitNames: "hitA hitB", PropAttachment: "1,2,3"})
	rec.Graph.Name = ""
	task, err := taskFromRecord(rec, 4)
	require.NoError(t, err)
	assert.Equal(t, "candidate4", task.Name)
	assert.Equal(t, []string{"hitA", "hitB"}, task.HitNames)
	require.NotNil(t, task.Attachment)
	assert.Equal(t, 3.0, task.Attachment.Z)
}

func TestOutcomeError(t *testing.T) {
	failed := laboratory.Outcome{Outcome: ptypes.Outcome{Name: "a", Status: ptypes.StatusFailed,
		ErrorCode: string(errors.ErrCodeMatchingExhausted), Error: "no match"}}
	cached := laboratory.Outcome{Outcome: ptypes.Outcome{Name: "b", Status: ptypes.StatusCached}}

	assert.NoError(t, outcomeError(nil))
	assert.NoError(t, outcomeError([]laboratory.Outcome{failed, cached}))
	err := outcomeError([]laboratory.Outcome{failed})
	assert.True(t, errors.IsMatchingExhausted(err))
	assert.True(t, strings.Contains(err.Error(), "no match"))
}

//Personal.AI order the ending
