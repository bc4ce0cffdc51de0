package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// Ranges renders ChangedLines as comma separated runs, like "3-5,9".
func (f ChangedFile) Ranges() string {
	var sb strings.Builder
	for i := 0; i < len(f.ChangedLines); {
		j := i
		for j+1 < len(f.ChangedLines) && f.ChangedLines[j+1] == f.ChangedLines[j]+1 {
			j++
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(f.ChangedLines[i]))
		if j > i {
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(f.ChangedLines[j]))
		}
		i = j + 1
	}
	return sb.String()
}

// GetChangedFiles lists the files under dir that differ from baseRef, with
// the line numbers that changed in the new version. Deleted files are left
// out and paths are joined onto dir.
func GetChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "-U0", "--relative", "--diff-filter=d", "--no-color", baseRef)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	changes, err := parseDiff(output)
	if err != nil {
		return nil, err
	}
	for i := range changes {
		changes[i].Path = filepath.Join(dir, filepath.FromSlash(changes[i].Path))
	}
	return changes, nil
}

// Regex for chunk header: @@ -oldStart,oldLen +newStart,newLen @@
// Only newStart and newLen (the + part) are used.
var chunkHeader = regexp.MustCompile(`^@@ \-\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var changes []ChangedFile
	var currentFile *ChangedFile

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			// a/path/to/file b/path/to/file: the b/ path is the new version
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				if currentFile != nil {
					changes = append(changes, *currentFile)
				}
				currentFile = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
			continue
		}

		if currentFile == nil || !strings.HasPrefix(line, "@@") {
			continue
		}

		matches := chunkHeader.FindStringSubmatch(line)
		if len(matches) < 2 {
			return nil, fmt.Errorf("malformed hunk header %q", line)
		}
		startLine, _ := strconv.Atoi(matches[1])
		count := 1 // length is 1 if omitted
		if matches[2] != "" {
			count, _ = strconv.Atoi(matches[2])
		}
		// A count of 0 is a pure deletion; no line of the new file changed.
		for i := 0; i < count; i++ {
			currentFile.ChangedLines = append(currentFile.ChangedLines, startLine+i)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if currentFile != nil {
		changes = append(changes, *currentFile)
	}
	return changes, nil
}
