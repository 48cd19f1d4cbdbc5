package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/glscope/internal/models"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "glscope version dev\n", out.String())
}

func TestAnalyzeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch {
		case strings.HasSuffix(r.URL.Path, "/groups/g/projects") && page == "1":
			w.Write([]byte(`[{"id":1,"name":"alpha"}]`))
		case strings.HasSuffix(r.URL.Path, "/projects/1/repository/commits") && page == "1":
			w.Write([]byte(`[{"id":"c1","author_name":"Alice","author_email":"alice@example.com","message":"init"}]`))
		case strings.HasSuffix(r.URL.Path, "/c1/diff"):
			w.Write([]byte(`[{"old_path":"main.go","new_path":"main.go","diff":"+package main\n"}]`))
		case strings.HasSuffix(r.URL.Path, "/c1/refs"):
			w.Write([]byte(`[{"type":"branch","name":"main"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "glscope.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_url: "+srv.URL+"/api/v4\ngroup_id: g\nvalid_extensions: [.go]\n"), 0o600))
	reportPath := filepath.Join(dir, "report.json")
	xlsxPath := filepath.Join(dir, "report.xlsx")

	var stderr bytes.Buffer
	cmd := newAnalyzeCmd()
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", configPath, "--token", "secret", "--out", reportPath, "--xlsx", xlsxPath, "--table"})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.CodeStats, 1)
	assert.Equal(t, "Alice-total", report.CodeStats[0].Key)
	assert.Equal(t, 1, report.CodeStats[0].Additions)

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Contains(t, stderr.String(), "Alice")
}

func TestAnalyzeCommandInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "glscope.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("group_id: g\n"), 0o600))

	cmd := newAnalyzeCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configPath, "--token", "secret"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API URL is required")
}
