//go:build procrt_runtimeglue

package glue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alphadose/procrt/internal/glue"
)

// TestRuntimeGlueSingleTurn exercises exactly one CToProc/ProcToC exchange:
// the body runs, parks itself via ProcToC, and CToProc returns to the
// caller. This mirrors ChanGlue's single-turn test without driving a
// second resume, since RuntimeGlue parks the calling goroutine directly
// via runtime.gopark and only a matching ProcToC from the body goroutine
// (not a test assertion) can ready it back.
func TestRuntimeGlueSingleTurn(t *testing.T) {
	var g glue.RuntimeGlue

	order := make([]string, 0, 2)
	f := newFakeSwitchable(func() {
		order = append(order, "body")
		g.ProcToC(f)
	})

	g.CToProc(f)
	order = append(order, "core")

	assert.Equal(t, []string{"body", "core"}, order)
}
