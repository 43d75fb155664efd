package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-callscreen/internal/screen/common/log"
)

// benchEvents returns n call events cycling through private, prefix-blocked,
// contact and unknown callers.
func benchEvents(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		switch i % 4 {
		case 0:
			sb.WriteString(`{"caller_id":null}`)
		case 1:
			fmt.Fprintf(&sb, `{"caller_id":"+1 900 555 %04d"}`, i%10000)
		case 2:
			sb.WriteString(`{"caller_id":"+1 555 0100"}`)
		default:
			fmt.Fprintf(&sb, `{"caller_id":"+44 20 7946 %04d"}`, i%10000)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// BenchmarkScreenEvents measures end-to-end screening of stdin events.
func BenchmarkScreenEvents(b *testing.B) {
	originalLogger := log.GetLogger()
	log.SetLogger(log.NewNoopLogger())
	defer log.SetLogger(originalLogger)

	cfg := testConfig(b, "enabled: true\nblock_private: true\nblock_unknown: true\nblocked_prefixes: [\"1900\"]\n")
	dir := filepath.Dir(cfg.Settings.File)
	cfg.Contacts.Files = []string{writeFile(b, dir, "contacts.txt", "+1 555 0100\n")}

	app, err := buildApplication(cfg, strings.NewReader(benchEvents(b.N)), io.Discard)
	require.NoError(b, err)

	b.ResetTimer()
	require.NoError(b, app.Run(context.Background()))
}
