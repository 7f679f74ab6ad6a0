package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asrprep/internal/dataset"
	"asrprep/internal/store"
	"asrprep/internal/testsupport"
)

func TestRunsListAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs stored")

	st := testsupport.MustOpenStore(t, env.cfg)
	splits := dataset.NewDict[[]dataset.ProcessedRecord]()
	splits.Set(dataset.SplitTest, []dataset.ProcessedRecord{
		{InputFeatures: [][]float32{{0.1}}, Labels: []int{1}},
		{InputFeatures: [][]float32{{0.2}}, Labels: []int{2}},
	})
	run := testsupport.SaveRun(t, st, store.KindTestOnly, splits)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err = runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, run.ID)
	requireContains(t, out, "test=2")

	out, _, err = runCLI(t, []string{"runs", "delete", run.ID}, env.configPath)
	if err != nil {
		t.Fatalf("runs delete: %v", err)
	}
	requireContains(t, out, "Deleted run "+run.ID)

	out, _, err = runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs after delete: %v", err)
	}
	requireContains(t, out, "No runs stored")
}

func TestSourcesSummarizesAudioFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudioSplit(t, env.cfg.AudioFolder.DataDir, dataset.SplitTrain, map[string]string{
		"a.wav": "first",
		"b.wav": "second",
		"c.wav": "third",
	})
	testsupport.WriteAudioSplit(t, env.cfg.AudioFolder.DataDir, dataset.SplitTest, map[string]string{
		"d.wav": "fourth",
	})

	out, _, err := runCLI(t, []string{"sources", "--source", "audiofolder"}, env.configPath)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	requireContains(t, out, "Audio folder: "+env.cfg.AudioFolder.DataDir)
	if strings.Contains(out, "FLEURS") {
		t.Fatalf("fleurs should not be listed:\n%s", out)
	}
	requireContains(t, out, "audiofolder")
	requireContains(t, out, "3")
	requireContains(t, out, "1")
}

func TestSourcesRejectsUnknownSource(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"sources", "--source", "common_voice"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown source error")
	}
	requireContains(t, err.Error(), "common_voice")
}

func TestPrepareRequiresFeatureCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Features.ExtractorCommand = []string{}
	env.writeConfig(t)

	_, _, err := runCLI(t, []string{"prepare", "--test-only"}, env.configPath)
	if err == nil {
		t.Fatal("expected prepare to fail without an extractor command")
	}
	requireContains(t, err.Error(), "features.extractor_command")
}

func TestPrepareTestOnlyStoresRun(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries("ffmpeg"))
	env.cfg.Features.ExtractorCommand = []string{env.writeScript(t, "extract", `{"input_features":[[[0.5,0.25],[0.75,1]]]}`)}
	env.cfg.Features.TokenizerCommand = []string{env.writeScript(t, "tokenize", `{"input_ids":[7,8,9]}`)}
	metricsPath := filepath.Join(env.baseDir, "metrics", "asrprep.prom")
	env.writeConfig(t)

	testsupport.WriteAudioSplit(t, env.cfg.AudioFolder.DataDir, dataset.SplitTrain, map[string]string{
		"a.wav": "unused",
	})
	testsupport.WriteAudioSplit(t, env.cfg.AudioFolder.DataDir, dataset.SplitTest, map[string]string{
		"b.wav": "salom",
		"c.wav": "dunyo",
	})

	out, _, err := runCLI(t, []string{"prepare", "--test-only", "--metrics-file", metricsPath}, env.configPath)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	requireContains(t, out, "stored in "+env.cfg.Paths.OutputDB)

	st := testsupport.MustOpenStore(t, env.cfg)
	runs, err := st.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	if runs[0].Kind != store.KindTestOnly {
		t.Fatalf("kind = %q, want %q", runs[0].Kind, store.KindTestOnly)
	}
	requireContains(t, out, runs[0].ID)

	_, prepared, err := st.Load(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if names := prepared.Names(); len(names) != 1 || names[0] != dataset.SplitTest {
		t.Fatalf("splits = %v, want [test]", names)
	}
	records, _ := prepared.Get(dataset.SplitTest)
	if len(records) != 2 {
		t.Fatalf("expected 2 test records, got %d", len(records))
	}
	for i, rec := range records {
		if len(rec.InputFeatures) != 2 || rec.InputFeatures[1][0] != 0.75 {
			t.Fatalf("record %d features = %v", i, rec.InputFeatures)
		}
		if len(rec.Labels) != 3 || rec.Labels[0] != 7 {
			t.Fatalf("record %d labels = %v", i, rec.Labels)
		}
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	requireContains(t, string(data), `asrprep_records_total{split="test",status="success"} 2`)

	entries, err := os.ReadDir(env.cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected per-run work directory to be removed, found %d entries", len(entries))
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "only")
	if lines := strings.Count(out, "\n"); lines < 4 {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestCheckReportsMissingExtractor(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	if err := os.MkdirAll(env.cfg.AudioFolder.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	env.cfg.Features.ExtractorCommand = []string{"clearly-not-present-extractor"}
	env.cfg.Features.TokenizerCommand = []string{"ffprobe"}
	env.writeConfig(t)

	out, _, err := runCLI(t, []string{"check", "--test-only"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, err.Error(), "Feature extractor")
	requireContains(t, out, "FAIL")
	if strings.Contains(out, "Corpus hub") {
		t.Fatalf("test-only check should skip the hub:\n%s", out)
	}
}
