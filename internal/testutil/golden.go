// Package testutil provides golden-file helpers for tests.
package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden controls whether golden files should be updated.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// GoldenPath returns testdata/golden/<name>.golden relative to the test's package.
func GoldenPath(name string) string {
	return filepath.Join("testdata", "golden", name+".golden")
}

// CompareGolden compares got against the named golden file after Normalize,
// failing with a diff on mismatch. With -update it rewrites the file instead.
func CompareGolden(t *testing.T, name string, got []byte) {
	t.Helper()

	normalized := Normalize(got)
	goldenPath := GoldenPath(name)

	if *updateGolden {
		UpdateGolden(t, name, normalized)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, string(normalized), t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(normalized, expected) {
		diff := unifiedDiff(string(expected), string(normalized), goldenPath)
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, diff, t.Name())
	}
}

// UpdateGolden writes data to the named golden file, creating directories.
func UpdateGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	goldenPath := GoldenPath(name)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		t.Fatalf("Failed to create golden directory: %v", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}

// unifiedDiff produces a line-by-line diff with a little leading context.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	maxLines := len(expectedLines)
	if len(gotLines) > maxLines {
		maxLines = len(gotLines)
	}

	for i := 0; i < maxLines; i++ {
		var expLine, gotLine string
		hasExp, hasGot := i < len(expectedLines), i < len(gotLines)
		if hasExp {
			expLine = expectedLines[i]
		}
		if hasGot {
			gotLine = gotLines[i]
		}
		if hasExp && hasGot && expLine == gotLine {
			continue
		}

		fmt.Fprintf(&buf, "@@ line %d @@\n", i+1)
		if hasExp {
			buf.WriteString("-" + expLine + "\n")
		}
		if hasGot {
			buf.WriteString("+" + gotLine + "\n")
		}
	}

	return buf.String()
}
