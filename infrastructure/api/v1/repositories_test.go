package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens"
	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/pipeline"
)

// runAnalyzedRepo submits and fully processes one repository so the
// read-side endpoints have data to serve.
func runAnalyzedRepo(t *testing.T) (*defectlens.Client, http.Handler, int64) {
	t.Helper()

	runner := &stubRunner{
		classify: pipeline.ClassifyResult{
			Commits: []pipeline.CommitRecord{
				{Hash: "buggy1", Message: "add feature", Classification: "Feature Addition",
					AuthoredDate: "2024-05-01T10:00:00", CommittedDate: "2024-05-01T10:00:00"},
				{Hash: "fix1", Message: "fix crash", Classification: "Corrective",
					AuthoredDate: "2024-05-02T10:00:00", CommittedDate: "2024-05-02T10:00:00"},
			},
			CorrectiveCommits: []string{"fix1"},
		},
		links: []analysis.BugLink{{BuggyCommit: "fix1", LinkedTo: []string{"buggy1"}}},
		metrics: []pipeline.MetricRecord{
			{CommitHash: "buggy1", Stats: analysis.MetricValues{NS: 1, LA: 10}},
			{CommitHash: "fix1", Stats: analysis.MetricValues{NS: 2, LD: 4}},
		},
	}
	client, handler := newTestServer(t, runner)

	submitAnalysis(t, handler,
		`{"userId":"user-1","repositoryUrl":"https://github.com/acme/widget"}`)

	processed, err := client.ProcessOne(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	repo, err := client.Repositories.GetByURL(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)
	return client, handler, repo.ID()
}

func getJSON(t *testing.T, handler http.Handler, path string) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestRepositories_ListAndGet(t *testing.T) {
	_, handler, repoID := runAnalyzedRepo(t)

	list := getJSON(t, handler, "/api/v1/repositories")
	data := list["data"].([]any)
	require.Len(t, data, 1)
	meta := list["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["total_count"])

	repo := getJSON(t, handler, fmt.Sprintf("/api/v1/repositories/%d", repoID))
	assert.Equal(t, "widget", repo["name"])
	assert.Equal(t, "https://github.com/acme/widget", repo["url"])
	assert.NotEmpty(t, repo["ingestedAt"])
}

func TestRepositories_GetUnknownIs404(t *testing.T) {
	_, handler := newTestServer(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/repositories/999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepositories_ListCommitsWithFilters(t *testing.T) {
	_, handler, repoID := runAnalyzedRepo(t)
	base := fmt.Sprintf("/api/v1/repositories/%d/commits", repoID)

	all := getJSON(t, handler, base)
	assert.Len(t, all["data"].([]any), 2)

	corrective := getJSON(t, handler, base+"?classification=Corrective")
	data := corrective["data"].([]any)
	require.Len(t, data, 1)
	commit := data[0].(map[string]any)
	assert.Equal(t, "fix1", commit["hash"])
	assert.Equal(t, true, commit["isLinked"])

	buggy := getJSON(t, handler, base+"?contains_bug=true")
	data = buggy["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "buggy1", data[0].(map[string]any)["hash"])
}

func TestRepositories_ListMetrics(t *testing.T) {
	_, handler, repoID := runAnalyzedRepo(t)

	response := getJSON(t, handler, fmt.Sprintf("/api/v1/repositories/%d/metrics", repoID))
	data := response["data"].([]any)
	require.Len(t, data, 2)

	byHash := map[string]map[string]any{}
	for _, item := range data {
		row := item.(map[string]any)
		byHash[row["commitHash"].(string)] = row
	}
	assert.EqualValues(t, 10, byHash["buggy1"]["la"])
	assert.EqualValues(t, 4, byHash["fix1"]["ld"])
}

func TestQueue_ListPendingTasks(t *testing.T) {
	_, handler := newTestServer(t, &stubRunner{})

	submitAnalysis(t, handler,
		`{"userId":"user-1","repositoryUrl":"https://github.com/acme/widget"}`)

	response := getJSON(t, handler, "/api/v1/queue")
	data := response["data"].([]any)
	require.Len(t, data, 1)
	task := data[0].(map[string]any)
	assert.Equal(t, "defectlens.analysis.run", task["operation"])
}
