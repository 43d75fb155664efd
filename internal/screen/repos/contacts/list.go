package contacts

import (
	"fmt"
	"os"
	"time"

	"github.com/haukened/rr-callscreen/internal/screen/common/log"
	"github.com/haukened/rr-callscreen/internal/screen/repos/numberlist/parsers"
)

// ReadList reads a plain contact list file and returns its normalized
// numbers. Prefix entries make no sense for contacts and are skipped.
func ReadList(path string, logger log.Logger, now time.Time) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening contact list %s: %w", path, err)
	}
	defer f.Close()

	rules, err := parsers.ParsePlainList(f, path, logger, now)
	if err != nil {
		return nil, fmt.Errorf("error parsing contact list %s: %w", path, err)
	}

	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		if !r.IsExact() {
			logger.Warn(map[string]any{"list": path, "value": r.Value}, "Prefix entry ignored in contact list")
			continue
		}
		ids = append(ids, r.Value)
	}
	return ids, nil
}
