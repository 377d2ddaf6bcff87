package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
log_level: error
models:
  - id: posvel
    actions: 2
    flatten: true
    weights: [[1, 1, 1], [0, 0, 1]]
    obs_space:
      kind: dict
      entries:
        - name: pos
          space: {kind: box, shape: [2], low: [-1, -1], high: [1, 3]}
        - name: vel
          space: {kind: box, shape: [1]}
  - id: cartpole
    actions: 2
    obs_space: {kind: box, shape: [4]}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "rld.yaml")
	if err := os.WriteFile(cfg, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if strings.Join(got, "|") != strings.Join(c.want, "|") || len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSizeUsesDefaultModel(t *testing.T) {
	out, err := run(t, "", "size")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Fatalf("size=%q", out)
	}
	out, err = run(t, "", "size", "cartpole")
	if err != nil || strings.TrimSpace(out) != "4" {
		t.Fatalf("size=%q err=%v", out, err)
	}
}

func TestPackFromStdin(t *testing.T) {
	out, err := run(t, `{"vel":[3],"pos":[1,2]}`, "pack", "posvel", "-")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	var resp struct {
		Flat  []float32 `json:"flat"`
		Shape []int     `json:"shape"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if len(resp.Flat) != 3 || resp.Flat[0] != 1 || resp.Flat[2] != 3 {
		t.Fatalf("flat=%v", resp.Flat)
	}
}

func TestUnpackYAMLKeepsOrder(t *testing.T) {
	out, err := run(t, "", "unpack", "posvel", "[1,2,3]", "-o", "yaml")
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if strings.Index(out, "pos:") > strings.Index(out, "vel:") || !strings.Contains(out, "batch: 0") {
		t.Fatalf("yaml=%s", out)
	}
}

func TestUnpackBatchedFlag(t *testing.T) {
	if _, err := run(t, "", "unpack", "posvel", "[[1,2,3],[4,5,6]]"); err == nil {
		t.Fatalf("expected rank error without --batched")
	}
	out, err := run(t, "", "unpack", "posvel", "[[1,2,3],[4,5,6]]", "--batched")
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !strings.Contains(out, `"batch": 2`) {
		t.Fatalf("out=%s", out)
	}
}

func TestForwardFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "obs.json")
	if err := os.WriteFile(p, []byte(`[{"pos":[1,2],"vel":[3]},{"pos":[0,0],"vel":[1]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "forward", "posvel", "@"+p, "--batch")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	var resp struct {
		Output [][]float32 `json:"output"`
		CallID string      `json:"call_id"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.CallID == "" || len(resp.Output) != 2 || resp.Output[0][0] != 6 || resp.Output[1][1] != 1 {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestBaselineMidpoint(t *testing.T) {
	out, err := run(t, "", "baseline", "posvel", "--kind", "midpoint")
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	var resp struct {
		Flat []float32 `json:"flat"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil || len(resp.Flat) != 3 || resp.Flat[1] != 1 {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}

func TestUnknownModel(t *testing.T) {
	if _, err := run(t, "", "space", "nope"); err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("err=%v", err)
	}
}
