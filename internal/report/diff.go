package report

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/verkeep/verkeep/internal/policy"
)

// PolicyDiff renders a line diff between a site's current policy and the one
// about to be applied, for the pre-run preview.
func PolicyDiff(current, desired policy.VersionPolicy) string {
	cur, _ := yaml.Marshal(current)
	des, _ := yaml.Marshal(desired)
	return lineDiff(string(cur), string(des))
}

func lineDiff(current, desired string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(current, desired)
	diffs := dmp.DiffMain(a, b, false)
	result := dmp.DiffCharsToLines(diffs, lines)

	var buff bytes.Buffer
	for _, diff := range result {
		var prefix string
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			prefix = "  "
		}
		for _, line := range strings.Split(diff.Text, "\n") {
			if line == "" {
				continue
			}
			buff.WriteString(prefix + line + "\n")
		}
	}
	return buff.String()
}
