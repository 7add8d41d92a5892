package maincmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/aalyth/chalcedony/internal/filetest"
)

var testUpdateCompileTests = false

// TestCompileFilesGolden drives the "compile" subcommand over every fixture
// in testdata/in and diffs its stdout/stderr against the golden files in
// testdata/out.
func TestCompileFilesGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".chal") {
		t.Run(fi.Name(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

			// error is ignored, we just want it reflected in errOut
			_ = CompileFiles(nil, stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, out.String(), resultDir, &testUpdateCompileTests)
			filetest.DiffErrors(t, fi, errOut.String(), resultDir, &testUpdateCompileTests)
		})
	}
}
