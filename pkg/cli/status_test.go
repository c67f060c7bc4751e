package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

func TestPrintStatus(t *testing.T) {
	t.Run("with record", func(t *testing.T) {
		var buf bytes.Buffer
		printStatus(&buf, "test/repo", &model.VersionRecord{
			LastVersion: "v4.0.0",
			LastCheck:   time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		})
		gt.String(t, buf.String()).Contains("test/repo")
		gt.String(t, buf.String()).Contains("v4.0.0")
		gt.String(t, buf.String()).Contains("2024-02-01")
	})

	t.Run("without record", func(t *testing.T) {
		var buf bytes.Buffer
		printStatus(&buf, "test/repo", nil)
		gt.String(t, buf.String()).Contains("(none)")
	})
}
