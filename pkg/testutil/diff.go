// Package testutil helps tests compare archive contents.
package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// DumpTarListing renders an uncompressed tar stream as an ls-style table:
// one row of mode, ownership, size, and name per member.
func DumpTarListing(archive []byte) (string, error) {
	ret := new(strings.Builder)
	table := tabwriter.NewWriter(ret, 0, 1, 1, ' ', 0)

	tarReader := tar.NewReader(bytes.NewReader(archive))
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintln(table, strings.Join([]string{
			"",
			header.FileInfo().Mode().String(),
			fmt.Sprintf("%d=%q", header.Uid, header.Uname),
			fmt.Sprintf("%d=%q", header.Gid, header.Gname),
			fmt.Sprintf("% 10d", header.Size),
			header.Name,
		}, "\t")); err != nil {
			return "", err
		}
		if _, err := io.Copy(io.Discard, tarReader); err != nil {
			return "", err
		}
	}
	if err := table.Flush(); err != nil {
		return "", err
	}
	return ret.String(), nil
}

// DumpTarFull renders every header and every member's content, for when
// the listings match but the bytes don't.
func DumpTarFull(archive []byte) (string, error) {
	ret := new(strings.Builder)

	tarReader := tar.NewReader(bytes.NewReader(archive))
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(ret, "tarHeader = %s", spewConfig.Sdump(header)); err != nil {
			return "", err
		}
		content, err := io.ReadAll(tarReader)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(ret, "tarContent =%s", spewConfig.Sdump(content)); err != nil {
			return "", err
		}
	}
	return ret.String(), nil
}

// AssertEqualTars compares two uncompressed tar streams, failing the test
// with a unified diff on mismatch.  The cheap listing comparison runs
// first so the usual failures read well.
func AssertEqualTars(t *testing.T, exp, act []byte) bool {
	t.Helper()

	expStr, err := DumpTarListing(exp)
	if err != nil {
		t.Errorf("error dumping expected listing: %v", err)
		return false
	}
	actStr, err := DumpTarListing(act)
	if err != nil {
		t.Errorf("error dumping actual listing: %v", err)
		return false
	}
	if expStr != actStr {
		t.Errorf("Listing diff:\n%s", unifiedDiff(expStr, actStr))
		return false
	}

	expStr, err = DumpTarFull(exp)
	if err != nil {
		t.Errorf("error dumping expected archive: %v", err)
		return false
	}
	actStr, err = DumpTarFull(act)
	if err != nil {
		t.Errorf("error dumping actual archive: %v", err)
		return false
	}
	if expStr != actStr {
		t.Errorf("Full diff:\n%s", unifiedDiff(expStr, actStr))
		return false
	}

	return true
}

func unifiedDiff(exp, act string) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(exp),
		B:        difflib.SplitLines(act),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return diff
}
