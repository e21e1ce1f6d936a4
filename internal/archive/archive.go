package archive

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Dir is the directory next to the pending file that receives archives
const Dir = "archive"

// ArchivePending moves the pending cards file into the archive directory
// next to it, with a timestamp in its name. It returns the new path.
func ArchivePending(fs afero.Fs, pendingPath string, now time.Time) (string, error) {
	if ok, err := afero.Exists(fs, pendingPath); err != nil {
		return "", fmt.Errorf("failed to check %s: %w", pendingPath, err)
	} else if !ok {
		return "", fmt.Errorf("pending cards file does not exist: %s", pendingPath)
	}

	archiveDir := filepath.Join(filepath.Dir(pendingPath), Dir)
	if err := fs.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(pendingPath)
	base := strings.TrimSuffix(filepath.Base(pendingPath), ext)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405"), ext))

	// Two archives within the same second
	if ok, _ := afero.Exists(fs, archivePath); ok {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405.000000"), ext))
	}

	if err := fs.Rename(pendingPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive pending cards: %w", err)
	}

	return archivePath, nil
}
