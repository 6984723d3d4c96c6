// File: internal/backup/archive.go
package backup

import (
	"compress/gzip"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"

	"travel_agent_backend/internal/docstore"
)

// FormatVersion is written into every archive and checked on restore.
const FormatVersion = 1

const (
	namePrefix = "backup-"
	nameSuffix = ".json.gz"
	nameLayout = "20060102T150405Z"
)

// The tag is optional so archives written before it was added still list and restore.
var namePattern = regexp.MustCompile(`^backup-(\d{8}T\d{6}Z)(?:-[0-9a-f]{8})?\.json\.gz$`)

// archive is the decoded content of a backup file.
type archive struct {
	FormatVersion int                           `json:"format_version"`
	CreatedAt     time.Time                     `json:"created_at"`
	Collections   map[string][]archivedDocument `json:"collections"`
}

// archivedDocument keeps the document data in the docstore encoding so timestamps survive a restore.
type archivedDocument struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// ArchiveName returns the file name of a backup taken at t. The tag keeps
// backups taken within the same second apart; an empty tag is omitted.
func ArchiveName(t time.Time, tag string) string {
	name := namePrefix + t.UTC().Format(nameLayout)
	if tag != "" {
		name += "-" + tag
	}
	return name + nameSuffix
}

// newArchiveTag returns eight random hex characters.
func newArchiveTag() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

// ParseArchiveName returns the time encoded in a backup file name.
func ParseArchiveName(name string) (time.Time, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(nameLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func newArchiveDocument(doc *docstore.Document) (archivedDocument, error) {
	raw, err := docstore.MarshalData(doc.Data)
	if err != nil {
		return archivedDocument{}, fmt.Errorf("encoding document %s: %w", doc.ID, err)
	}
	return archivedDocument{ID: doc.ID, Data: raw}, nil
}

func writeArchive(w io.Writer, a *archive) error {
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(a); err != nil {
		_ = gz.Close()
		return fmt.Errorf("encoding archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compressing archive: %w", err)
	}
	return nil
}

func readArchive(r io.Reader) (*archive, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening compressed archive: %w", err)
	}
	defer gz.Close()

	var a archive
	if err := json.NewDecoder(gz).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	if a.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported archive format version %d", a.FormatVersion)
	}
	return &a, nil
}
