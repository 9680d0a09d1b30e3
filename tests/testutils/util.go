// Package testutils provides test infrastructure for qcsummary integration tests.
package testutils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// binarySetup runs every test case command against the qcsummary binary.
type binarySetup struct {
	binary string
}

// CustomCommand returns a command bound to the qcsummary binary, with a minimal environment.
func (setup *binarySetup) CustomCommand(_ *test.Case, _ tig.T) test.CustomizableCommand {
	cmd := test.NewGenericCommand()
	cmd.WithBinary(setup.binary)

	generic, ok := cmd.(*test.GenericCommand)
	if !ok {
		return cmd
	}

	generic.WithWhitelist([]string{
		"PATH",
		"HOME",
		"TMPDIR",
	})

	return generic
}

// AmbientRequirements only needs the binary: reports are plain text, no external tool is involved.
func (setup *binarySetup) AmbientRequirements(_ *test.Case, testing tig.T) {
	if _, err := os.Stat(setup.binary); err == nil {
		return
	}

	path, err := exec.LookPath(filepath.Base(setup.binary))
	if err != nil {
		testing.Log("binary " + setup.binary + " not found: run 'make build' or install qcsummary in PATH")
		testing.FailNow()

		return
	}

	setup.binary = path
}

// Setup creates a test case configured to run the qcsummary binary built under bin/.
func Setup() *test.Case {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // only the file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	test.Customize(&binarySetup{binary: filepath.Join(projectRoot, "bin", "qcsummary")})

	return &test.Case{
		Env: map[string]string{},
	}
}
