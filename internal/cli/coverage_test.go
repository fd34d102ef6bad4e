package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/dto"
)

type fakeCoverage struct {
	runReq   dto.RunCoverageRequest
	exported []string
	runErr   error
}

func (f *fakeCoverage) Run(ctx context.Context, req dto.RunCoverageRequest) (*dto.CoverageRunResponse, error) {
	f.runReq = req
	if f.runErr != nil {
		return nil, f.runErr
	}
	sub := "sub-1"
	return &dto.CoverageRunResponse{
		RunID:  "run-1",
		Date:   req.Date,
		DryRun: req.DryRun,
		Results: []coverage.CoverageResult{
			{AbsentStaffName: "Tari", PeriodLabel: "1st", CandidateID: &sub, CandidateName: "Sari", Type: coverage.AssignmentTypeExternal},
			{AbsentStaffName: "Tari", PeriodLabel: "2nd", Type: coverage.AssignmentTypeNone},
		},
		Meta: coverage.RunMeta{AbsencesProcessed: 1, CoveredPeriods: 1, UncoveredPeriods: 1, TotalCandidatesEvaluated: 4},
	}, nil
}

func (f *fakeCoverage) Get(ctx context.Context, date string) (*dto.CoverageSheet, bool, error) {
	return &dto.CoverageSheet{
		Date:    date,
		Rows:    []dto.CoverageSheetRow{{StaffName: "Tari", PeriodLabel: "1st", CandidateName: "Sari", Status: "ASSIGNED"}},
		Covered: 1,
	}, false, nil
}

func (f *fakeCoverage) Export(ctx context.Context, date, format string) (*dto.ExportFile, error) {
	f.exported = append(f.exported, date+"/"+format)
	return &dto.ExportFile{Filename: "coverage-" + date + "." + format, Body: []byte("a,b\n")}, nil
}

func execute(t *testing.T, svc *fakeCoverage, released *int, args ...string) (string, error) {
	t.Helper()
	factory := func(ctx context.Context) (CoverageAPI, func(), error) {
		return svc, func() { *released++ }, nil
	}
	cmd := NewRootCommand(factory, nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommandPrintsSummary(t *testing.T) {
	svc := &fakeCoverage{}
	released := 0

	out, err := execute(t, svc, &released, "run", "--date", "2024-09-02", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, dto.RunCoverageRequest{Date: "2024-09-02", DryRun: true}, svc.runReq)
	assert.Contains(t, out, "Coverage for 2024-09-02 (dry run)")
	assert.Contains(t, out, "Sari")
	assert.Contains(t, out, "Covered: 1  Uncovered: 1")
	assert.Equal(t, 1, released)
}

func TestRunCommandWrapsServiceError(t *testing.T) {
	svc := &fakeCoverage{runErr: errors.New("snapshot invalid")}
	released := 0

	_, err := execute(t, svc, &released, "run", "--date", "2024-09-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coverage run failed")
	assert.Equal(t, 1, released)
}

func TestShowCommand(t *testing.T) {
	released := 0
	out, err := execute(t, &fakeCoverage{}, &released, "show", "-d", "2024-09-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Coverage sheet for 2024-09-02")
	assert.Contains(t, out, "ASSIGNED")
}

func TestExportCommandWritesFile(t *testing.T) {
	svc := &fakeCoverage{}
	released := 0
	dir := t.TempDir()

	out, err := execute(t, svc, &released, "export", "--date", "2024-09-02", "--format", "csv", "--out", dir)
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, "coverage-2024-09-02.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(body))
	assert.Contains(t, out, "Wrote")
	assert.Equal(t, []string{"2024-09-02/csv"}, svc.exported)
}

func TestExportCommandToStdout(t *testing.T) {
	released := 0
	out, err := execute(t, &fakeCoverage{}, &released, "export", "--date", "2024-09-02", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", out)
}

func TestFactoryErrorIsReturned(t *testing.T) {
	factory := func(ctx context.Context) (CoverageAPI, func(), error) {
		return nil, nil, errors.New("database down")
	}
	cmd := NewRootCommand(factory, nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
}
