package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/defectlens/defectlens/domain/analysis"
)

// Script names of the stage collaborators, resolved under the scripts
// directory.
const (
	cloneScript    = "clone.py"
	classifyScript = "classify_commits.py"
	linkScript     = "link_commits.py"
	metricsScript  = "compute_metrics.py"
)

// stderrTailLimit bounds how much stderr is carried into stage errors.
const stderrTailLimit = 2048

// ProcessRunner implements Runner by shelling out to the stage scripts.
type ProcessRunner struct {
	pythonBin  string
	scriptsDir string
	logger     *slog.Logger
}

// NewProcessRunner creates a ProcessRunner.
func NewProcessRunner(pythonBin, scriptsDir string, logger *slog.Logger) ProcessRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return ProcessRunner{
		pythonBin:  pythonBin,
		scriptsDir: scriptsDir,
		logger:     logger,
	}
}

// Clone materializes the repository at req.Dir. The clone collaborator
// writes a textual log to stdout; only the exit code matters here.
func (r ProcessRunner) Clone(ctx context.Context, req CloneRequest) error {
	args := []string{"-u", req.URL, "-d", req.Dir}
	if req.Branch != "" {
		args = append(args, "-b", req.Branch)
	}
	if req.Token != "" {
		args = append(args, "-t", req.Token)
	}

	_, err := r.run(ctx, "clone", cloneScript, args)
	return err
}

// Classify extracts and classifies the commits of the working copy.
func (r ProcessRunner) Classify(ctx context.Context, workdir string) (ClassifyResult, error) {
	out, err := r.run(ctx, "classify", classifyScript, []string{"-p", workdir})
	if err != nil {
		return ClassifyResult{}, err
	}

	if err := validateOutput(ctx, "classify", classifySchema, out); err != nil {
		return ClassifyResult{}, err
	}

	var payload struct {
		Status            string         `json:"status"`
		Message           string         `json:"message"`
		Commits           []CommitRecord `json:"commits"`
		CorrectiveCommits []string       `json:"corrective_commits"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return ClassifyResult{}, fmt.Errorf("classify: %w: %v", ErrMalformedOutput, err)
	}

	if payload.Status != "success" {
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("status %q", payload.Status)
		}
		return ClassifyResult{}, fmt.Errorf("classify: %w: %s", ErrStageFailed, msg)
	}

	return ClassifyResult{
		Commits:           payload.Commits,
		CorrectiveCommits: payload.CorrectiveCommits,
	}, nil
}

// Link traces corrective commits back to the commits that introduced
// the defects they fix.
func (r ProcessRunner) Link(ctx context.Context, workdir, correctivePath string) ([]analysis.BugLink, error) {
	out, err := r.run(ctx, "link", linkScript, []string{"-p", workdir, "-c", correctivePath})
	if err != nil {
		return nil, err
	}

	if err := validateOutput(ctx, "link", linkSchema, out); err != nil {
		return nil, err
	}

	var payload []struct {
		BuggyCommit string   `json:"buggy_commit"`
		LinkedTo    []string `json:"linked_to"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("link: %w: %v", ErrMalformedOutput, err)
	}

	links := make([]analysis.BugLink, len(payload))
	for i, p := range payload {
		links[i] = analysis.BugLink{BuggyCommit: p.BuggyCommit, LinkedTo: p.LinkedTo}
	}
	return links, nil
}

// ComputeMetrics computes per-commit change metrics.
func (r ProcessRunner) ComputeMetrics(ctx context.Context, workdir string) ([]MetricRecord, error) {
	out, err := r.run(ctx, "metrics", metricsScript, []string{"-p", workdir})
	if err != nil {
		return nil, err
	}

	if err := validateOutput(ctx, "metrics", metricsSchema, out); err != nil {
		return nil, err
	}

	var payload []struct {
		CommitHash string `json:"commit_hash"`
		Stats      struct {
			NS      float64 `json:"ns"`
			ND      float64 `json:"nd"`
			NF      float64 `json:"nf"`
			Entropy float64 `json:"entropy"`
			LA      float64 `json:"la"`
			LD      float64 `json:"ld"`
			LT      float64 `json:"lt"`
			NDev    float64 `json:"ndev"`
			Age     float64 `json:"age"`
			NUC     float64 `json:"nuc"`
			Exp     float64 `json:"exp"`
			RExp    float64 `json:"rexp"`
			SExp    float64 `json:"sexp"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("metrics: %w: %v", ErrMalformedOutput, err)
	}

	records := make([]MetricRecord, len(payload))
	for i, p := range payload {
		records[i] = MetricRecord{
			CommitHash: p.CommitHash,
			Stats: analysis.MetricValues{
				NS:      p.Stats.NS,
				ND:      p.Stats.ND,
				NF:      p.Stats.NF,
				Entropy: p.Stats.Entropy,
				LA:      p.Stats.LA,
				LD:      p.Stats.LD,
				LT:      p.Stats.LT,
				NDev:    p.Stats.NDev,
				Age:     p.Stats.Age,
				NUC:     p.Stats.NUC,
				Exp:     p.Stats.Exp,
				RExp:    p.Stats.RExp,
				SExp:    p.Stats.SExp,
			},
		}
	}
	return records, nil
}

// run executes a stage script and returns its stdout. A non-zero exit
// is reported as ErrStageFailed carrying the trailing stderr.
func (r ProcessRunner) run(ctx context.Context, stage, script string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.pythonBin, append([]string{filepath.Join(r.scriptsDir, script)}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running analysis stage",
		slog.String("stage", stage),
		slog.String("script", script),
	)

	if err := cmd.Run(); err != nil {
		detail := stderrTail(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%s: %w: %s", stage, ErrStageFailed, detail)
	}
	return stdout.Bytes(), nil
}

// stderrTail returns the trailing portion of stderr, trimmed.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	return s
}
