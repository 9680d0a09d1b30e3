package tests_test

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectVerdict returns a comparator verifying that a written verdict file holds the given status for a metric.
// The file must carry every catalog key.
func expectVerdict(path, metric, status string) test.Comparator {
	return func(_ string, testing tig.T) {
		testing.Helper()

		data, err := os.ReadFile(path) //nolint:gosec // test fixture path
		if err != nil {
			testing.Log(fmt.Sprintf("expected verdict file %s: %v", path, err))
			testing.Fail()

			return
		}

		var verdicts map[string]struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		}

		if err := json.Unmarshal(data, &verdicts); err != nil {
			testing.Log(fmt.Sprintf("verdict file %s is not valid JSON: %v", path, err))
			testing.Fail()

			return
		}

		const catalogSize = 11
		if len(verdicts) != catalogSize {
			testing.Log(fmt.Sprintf("expected %d keys in %s, got %d", catalogSize, path, len(verdicts)))
			testing.Fail()
		}

		if got := verdicts[metric].Status; got != status {
			testing.Log(fmt.Sprintf("expected %s to be %s in %s, got %q", metric, status, path, got))
			testing.Fail()
		}
	}
}

// expectFiles returns a comparator verifying that dir holds exactly the given file names.
func expectFiles(dir string, names ...string) test.Comparator {
	return func(_ string, testing tig.T) {
		testing.Helper()

		entries, err := os.ReadDir(dir)
		if err != nil {
			testing.Log(fmt.Sprintf("reading %s: %v", dir, err))
			testing.Fail()

			return
		}

		found := make(map[string]bool, len(entries))
		for _, entry := range entries {
			found[entry.Name()] = true
		}

		for _, name := range names {
			if !found[name] {
				testing.Log(fmt.Sprintf("expected %s in %s, found %v", name, dir, found))
				testing.Fail()
			}
		}

		if len(entries) != len(names) {
			testing.Log(fmt.Sprintf("expected %d files in %s, found %v", len(names), dir, found))
			testing.Fail()
		}
	}
}
