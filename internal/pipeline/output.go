package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// OutputFileName returns the download name for an email written for role:
// cold_email_<role>.txt with the role lowercased, spaces turned into underscores
// and path-unsafe characters removed.
func OutputFileName(role string) string {
	name := strings.ToLower(strings.TrimSpace(role))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "position"
	}
	return "cold_email_" + name + ".txt"
}

// WriteDrafts writes each job's email body to dir and records the path on the job.
// Roles that map to the same file name get the lowest numeric suffix not yet used in this run.
func WriteDrafts(dir string, jobs []JobResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	used := make(map[string]bool, len(jobs))
	for i := range jobs {
		name := uniqueName(OutputFileName(jobs[i].Job.Role), used)
		used[name] = true

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(jobs[i].Draft.Body+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		jobs[i].File = path
	}
	return nil
}

func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	base := strings.TrimSuffix(name, ".txt")
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d.txt", base, n)
		if !used[candidate] {
			return candidate
		}
	}
}
