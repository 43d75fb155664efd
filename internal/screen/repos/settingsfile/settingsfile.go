// Package settingsfile loads call screening rules from a YAML, JSON or TOML
// file and watches it for changes.
package settingsfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rr-callscreen/internal/screen/common/clock"
	"github.com/haukened/rr-callscreen/internal/screen/common/log"
	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
	"github.com/haukened/rr-callscreen/internal/screen/repos/numberlist/parsers"
)

// document is the on-disk shape of a settings file. Missing keys keep their
// zero value, which is the documented default for every rule.
type document struct {
	Enabled         bool     `koanf:"enabled"`
	BlockAll        bool     `koanf:"block_all"`
	BlockUnknown    bool     `koanf:"block_unknown"`
	BlockPrivate    bool     `koanf:"block_private"`
	BlockedNumbers  []string `koanf:"blocked_numbers"`
	BlockedPrefixes []string `koanf:"blocked_prefixes"`

	// NumberLists are plain list files merged into the two lists above.
	// Relative paths are resolved against the settings file directory.
	NumberLists []string `koanf:"number_lists" validate:"dive,required"`
}

// Loader reads RuleSettings from a single file.
type Loader struct {
	path     string
	clock    clock.Clock
	logger   log.Logger
	validate *validator.Validate
}

// New returns a Loader for path.
func New(path string, clk clock.Clock, logger log.Logger) *Loader {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Loader{
		path:     path,
		clock:    clk,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Path returns the settings file path.
func (l *Loader) Path() string { return l.path }

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported settings file type: %q", filepath.Ext(path))
	}
}

// Load reads and validates the settings file, merges any referenced number
// lists, and builds a snapshot.
func (l *Loader) Load() (domain.RuleSettings, error) {
	parser, err := parserFor(l.path)
	if err != nil {
		return domain.RuleSettings{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(l.path), parser); err != nil {
		return domain.RuleSettings{}, fmt.Errorf("error loading settings file %s: %w", l.path, err)
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		return domain.RuleSettings{}, fmt.Errorf("error unmarshalling settings file %s: %w", l.path, err)
	}
	if err := l.validate.Struct(&doc); err != nil {
		return domain.RuleSettings{}, fmt.Errorf("settings file %s failed validation: %w", l.path, err)
	}

	l.warnEmptyEntries(doc)

	opts := domain.RuleSettingsOptions{
		Enabled:         doc.Enabled,
		BlockAll:        doc.BlockAll,
		BlockUnknown:    doc.BlockUnknown,
		BlockPrivate:    doc.BlockPrivate,
		BlockedNumbers:  doc.BlockedNumbers,
		BlockedPrefixes: doc.BlockedPrefixes,
	}
	for _, list := range doc.NumberLists {
		rules, err := l.loadList(list)
		if err != nil {
			return domain.RuleSettings{}, err
		}
		opts.AddRules(rules)
	}

	return domain.NewRuleSettings(opts), nil
}

// warnEmptyEntries flags inline entries with no digits left after
// normalization. They are kept: an empty prefix blocks every identified
// caller and an empty number blocks callers presenting only '+' or spaces.
func (l *Loader) warnEmptyEntries(doc document) {
	for _, p := range doc.BlockedPrefixes {
		if utils.NormalizeCallerID(p) == "" {
			l.logger.Warn(map[string]any{"path": l.path, "raw": p}, "Empty blocked prefix matches every caller")
		}
	}
	for _, n := range doc.BlockedNumbers {
		if utils.NormalizeCallerID(n) == "" {
			l.logger.Warn(map[string]any{"path": l.path, "raw": n}, "Empty blocked number")
		}
	}
}

func (l *Loader) loadList(list string) ([]domain.NumberRule, error) {
	path := list
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(l.path), path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening number list %s: %w", path, err)
	}
	defer f.Close()

	rules, err := parsers.ParsePlainList(f, path, l.logger, l.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("error parsing number list %s: %w", path, err)
	}
	l.logger.Debug(map[string]any{"list": path, "rules": len(rules)}, "Number list loaded")
	return rules, nil
}

// LoadOrDefault is Load with failures folded into the disabled default
// snapshot, so an unreadable file never blocks calls.
func (l *Loader) LoadOrDefault() domain.RuleSettings {
	s, err := l.Load()
	if err != nil {
		l.logger.Error(map[string]any{"path": l.path, "error": err.Error()}, "Settings unreadable, screening disabled")
		return domain.DefaultRuleSettings()
	}
	return s
}

// rearmInterval is how often a lost watch retries until the file exists again.
var rearmInterval = 500 * time.Millisecond

// Watch reloads the file whenever it changes and passes each good snapshot
// to apply. A failed reload is logged and the previous snapshot stays
// active. apply is not called after ctx is done.
//
// The underlying fsnotify watcher stops on its own when the file is removed
// or the watcher reports an error. Watch then polls until the file is back,
// re-arms and reloads it. A watcher goroutine that is still running when ctx
// is done cannot be stopped; it stays idle and never calls apply again.
func (l *Loader) Watch(ctx context.Context, apply func(domain.RuleSettings)) error {
	return file.Provider(l.path).Watch(func(_ interface{}, err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.logger.Warn(map[string]any{"path": l.path, "error": err.Error()}, "Settings watch lost, re-arming")
			go l.rearm(ctx, apply)
			return
		}
		l.reload(ctx, apply)
	})
}

func (l *Loader) rearm(ctx context.Context, apply func(domain.RuleSettings)) {
	ticker := time.NewTicker(rearmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := l.Watch(ctx, apply); err != nil {
			continue
		}
		l.logger.Info(map[string]any{"path": l.path}, "Settings watch re-armed")
		// The recreate event may have fired before the new watcher existed.
		l.reload(ctx, apply)
		return
	}
}

func (l *Loader) reload(ctx context.Context, apply func(domain.RuleSettings)) {
	s, err := l.Load()
	if err != nil {
		l.logger.Error(map[string]any{"path": l.path, "error": err.Error()}, "Settings reload failed, keeping previous settings")
		return
	}
	if ctx.Err() != nil {
		return
	}
	apply(s)
}
